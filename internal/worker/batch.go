package worker

import (
	"context"
	"fmt"
)

// keyedJob runs fn for one id; the id travels with the result so callers
// never depend on completion order
type keyedJob[T any] struct {
	id string
	fn func(ctx context.Context, id string) (T, error)
}

func (j *keyedJob[T]) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &KeyedResult[T]{ID: j.id, Error: err}
	}
	value, err := j.fn(ctx, j.id)
	return &KeyedResult[T]{ID: j.id, Value: value, Error: err}
}

// KeyedResult is the outcome of one id in a batch
type KeyedResult[T any] struct {
	ID    string
	Value T
	Error error
}

// GetError returns the error from the job
func (r *KeyedResult[T]) GetError() error {
	return r.Error
}

// Collect runs fn for every id with at most `workers` running at once.
// Values are keyed by id. Ids whose job failed, or was never run because
// ctx was cancelled, appear in the error map instead.
func Collect[T any](ctx context.Context, workers int, ids []string, fn func(ctx context.Context, id string) (T, error)) (map[string]T, map[string]error) {
	values := make(map[string]T, len(ids))
	errs := make(map[string]error)
	if len(ids) == 0 {
		return values, errs
	}

	if workers > len(ids) {
		workers = len(ids)
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	submitted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if submitted[id] {
			continue
		}
		if !pool.Submit(&keyedJob[T]{id: id, fn: fn}) {
			break
		}
		submitted[id] = true
	}

	for _, result := range pool.Wait() {
		kr := result.(*KeyedResult[T])
		if kr.Error != nil {
			errs[kr.ID] = kr.Error
			continue
		}
		values[kr.ID] = kr.Value
	}

	for _, id := range ids {
		_, ok := values[id]
		_, failed := errs[id]
		if !ok && !failed {
			errs[id] = fmt.Errorf("job %s not run: %w", id, context.Cause(ctx))
		}
	}

	return values, errs
}
