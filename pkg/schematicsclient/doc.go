// Package schematicsclient provides the primary entry point for constructing
// a client that implements the schematics.Client interface.
//
// It layers configuration, endpoint resolution, authentication and the retrying
// transport on top of the resource interfaces and types defined in the
// schematics package.
//
// Quick start
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
//
//	  // Region only: the endpoint is derived and an api key is exchanged for
//	  // access tokens on demand.
//	  cli, err := schematicsclient.New(ctx, &schematics.Config{
//	    Region: "eu-de",
//	    APIKey: "my-api-key",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  cursor := cli.Workspaces().ListCursor(schematics.NewListParams().WithLimit(50))
//	  workspaces, err := cursor.All(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = workspaces
//	}
//
// # Configuration files
//
// NewFromFile and NewFromEnvironment read YAML configuration, a .env file and
// SCHEMATICS_ prefixed environment variables. Keys use snake case, for example
// api_key, max_attempts and token_cache_file.
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken,
// NewWithAPIKey and NewWithClientCredentials.
package schematicsclient
