package schematics

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"
)

// Invoker calls a catalog operation by name. Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, operation string, params *Params) (*Result[json.RawMessage], error)
}

// BatchOperation represents a single call in a batch.
type BatchOperation struct {
	ID        string
	Operation string
	Params    *Params
	Callback  func(result *BatchResult)
}

// BatchResult represents the outcome of one batch call.
type BatchResult struct {
	ID       string
	Success  bool
	Result   *Result[json.RawMessage]
	Error    error
	Duration time.Duration
}

// BatchExecutor runs independent calls concurrently with a bounded number of
// workers. A failing call never cancels the others; they share nothing but
// the client's credential cache.
type BatchExecutor struct {
	invoker     Invoker
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(invoker Invoker, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = 5
	}

	return &BatchExecutor{
		invoker:     invoker,
		concurrency: concurrency,
	}
}

// SetTimeout bounds each call of the batch. Zero leaves the client's per-call
// timeout in charge.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs the batch and returns one result per operation, in input
// order. The returned error is the first failure encountered, if any.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var group errgroup.Group

	group.SetLimit(b.concurrency)

	for index, operation := range operations {
		group.Go(func() error {
			result := b.executeOperation(ctx, operation)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}

			return result.Error
		})
	}

	err := group.Wait()

	return results, err
}

func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	if b.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := b.invoker.Invoke(ctx, operation.Operation, operation.Params)

	return &BatchResult{
		ID:       operation.ID,
		Success:  err == nil,
		Result:   res,
		Error:    err,
		Duration: time.Since(start),
	}
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{}
}

// Add appends a call of the named operation.
func (b *BatchBuilder) Add(id, operation string, params *Params) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:        id,
		Operation: operation,
		Params:    params,
	})

	return b
}

// AddGet appends a call of a get-by-id operation such as "get_workspace".
func (b *BatchBuilder) AddGet(id, operation, pathParam, resourceID string) *BatchBuilder {
	return b.Add(id, operation, &Params{Path: map[string]string{pathParam: resourceID}})
}

// AddOperation appends a prepared operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the operations added so far.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}
