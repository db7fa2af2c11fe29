// Package operation describes the callable operations of the API and turns an
// operation plus caller parameters into a transport request.
package operation

import "strings"

// Operation is one named endpoint of the API.
type Operation struct {
	Name   string
	Method string
	// Path is a template whose {name} placeholders are filled from path
	// parameters, e.g. "/v1/workspaces/{w_id}".
	Path string
	// Idempotent operations may be retried after the request was sent.
	Idempotent bool
	// Unauthenticated operations are sent without an Authorization header.
	Unauthenticated bool
	AcceptsBody     bool
	// Multipart operations send their files and body fields as
	// multipart/form-data.
	Multipart bool
	// ResultSchema optionally holds a JSON schema the decoded body must match.
	ResultSchema []byte
	Summary      string
}

// PathParams returns the placeholder names of the path template in order.
func (o *Operation) PathParams() []string {
	var names []string

	rest := o.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}

		names = append(names, rest[start+1:start+end])
		rest = rest[start+end+1:]
	}
}
