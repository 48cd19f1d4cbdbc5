// Package batch runs independent units of work in fixed-size batches:
// fully parallel inside a batch, strictly sequential across batches.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Result is the outcome of one unit of work
type Result[T any] struct {
	Item  T
	Err   error
	Fatal bool
}

// Func processes a single item
type Func[T any] func(ctx context.Context, item T) error

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err so that no further batch is started once the current
// batch has settled
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// RunBounded splits items into contiguous batches of at most batchSize and
// runs fn for every item of a batch concurrently, waiting for the whole
// batch before starting the next. Failures never cancel sibling units.
// Results are returned in submission order; items of batches that were not
// started (fatal result or ctx done) have no result.
func RunBounded[T any](ctx context.Context, items []T, batchSize int, fn Func[T]) []Result[T] {
	if batchSize < 1 {
		batchSize = 1
	}

	results := make([]Result[T], 0, len(items))
	for start := 0; start < len(items); start += batchSize {
		if ctx.Err() != nil {
			break
		}

		chunk := items[start:min(start+batchSize, len(items))]
		settled := make([]Result[T], len(chunk))

		var wg sync.WaitGroup
		for i, item := range chunk {
			wg.Add(1)
			go func(i int, item T) {
				defer wg.Done()
				err := run(ctx, item, fn)
				settled[i] = Result[T]{Item: item, Err: err, Fatal: IsFatal(err)}
			}(i, item)
		}
		wg.Wait()

		results = append(results, settled...)
		if FirstFatal(settled) != nil {
			break
		}
	}

	return results
}

func run[T any](ctx context.Context, item T, fn Func[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx, item)
}

// FirstFatal returns the error of the first fatal result, if any
func FirstFatal[T any](results []Result[T]) error {
	for _, r := range results {
		if r.Fatal {
			return r.Err
		}
	}
	return nil
}

// Failed counts results carrying an error
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
