// Package schematics provides types, interfaces, and helpers for working with
// an infrastructure-automation REST API that manages workspaces, jobs, agents,
// inventories and blueprints.
//
// # Overview
//
// The schematics package defines the domain types (e.g., Workspace, Job,
// Agent), the typed call result, the error taxonomy, and the interfaces for
// resource-oriented clients (e.g., WorkspacesClient, JobsClient). A concrete
// implementation is provided by the schematicsclient package, which wires
// configuration, transport, authentication, and region resolution.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/schematics-client/pkg/schematics"
//	  "github.com/fivetwenty-io/schematics-client/pkg/schematicsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := schematicsclient.New(ctx, &schematics.Config{Region: "us-south", APIKey: "..."})
//	  if err != nil { log.Fatal(err) }
//
//	  res, err := cli.Workspaces().List(ctx, schematics.NewListParams().WithLimit(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = res.Data.Resources
//	}
//
// # Results
//
// Every call returns a Result carrying the status code, headers, request id,
// raw body, and the decoded payload. Data is nil when the service answered
// with an empty success body.
//
// # Pagination
//
// List operations return one page. A Cursor walks the pages lazily by
// following the next-page token, one request per Next call:
//
//	cursor := cli.Workspaces().ListCursor(schematics.NewListParams())
//	for page, err := range cursor.Pages(ctx) {
//	  if err != nil { break }
//	  _ = page.Resources
//	}
//
// # Errors
//
// Failures are reported as ValidationError (never sent), AuthError,
// TransportError, TimeoutError, APIError (non-success status) or DecodeError.
// Helpers such as IsNotFound, IsUnauthorized and IsRetryable branch on
// common cases.
//
// # Interceptors, metrics and batches
//
// Request/response interceptors (logging, headers, request ids, rate
// limiting, circuit breaking, Prometheus metrics) run once around every call.
// BatchExecutor runs independent calls concurrently through Invoke.
package schematics
