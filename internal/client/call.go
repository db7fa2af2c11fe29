package client

import (
	"context"

	"github.com/fivetwenty-io/schematics-client/internal/decode"
	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// call runs one catalog operation through the whole pipeline: build, dispatch
// and decode into T.
func call[T any](ctx context.Context, c *Client, name string, params *schematics.Params) (*schematics.Result[T], error) {
	op, err := c.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}

	req, err := operation.Build(op, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return decode.Decode[T](op.Name, resp.StatusCode, resp.Headers, resp.Body, op.ResultSchema)
}

// list fetches one page of a list operation.
func list[T any](ctx context.Context, c *Client, name string, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[T]], error) {
	return call[schematics.ListResponse[T]](ctx, c, name, &schematics.Params{Query: params.ToQuery()})
}

// cursor returns a lazy cursor over a list operation. Each page reuses the
// caller's parameters with the start token of the previous page.
func cursor[T any](c *Client, name string, params *schematics.ListParams) *schematics.Cursor[T] {
	base := params.Clone()

	return schematics.NewCursor(func(ctx context.Context, token string) (*schematics.ListResponse[T], error) {
		page := base.Clone()
		if token != "" {
			page.Start = token
		}

		result, err := list[T](ctx, c, name, page)
		if err != nil {
			return nil, err
		}

		if result.Data == nil {
			return &schematics.ListResponse[T]{}, nil
		}

		return result.Data, nil
	})
}

func pathParams(pairs ...string) map[string]string {
	params := make(map[string]string, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		params[pairs[i]] = pairs[i+1]
	}

	return params
}

func byID(key, id string) *schematics.Params {
	return &schematics.Params{Path: pathParams(key, id)}
}

func withBody(key, id string, body any) *schematics.Params {
	params := &schematics.Params{Body: body}
	if key != "" {
		params.Path = pathParams(key, id)
	}

	return params
}
