package services

import (
	"context"
	"fmt"
)

// ListAll requests pages 1, 2, 3, ... and collects their items until a page
// decodes to an empty list. Any failure aborts the walk and no partial
// result is returned.
func ListAll[T any](
	ctx context.Context,
	fetcher *Fetcher,
	pageURL func(page int) string,
	op Operation,
	decode func(body []byte) ([]T, error),
) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		body, err := fetcher.Fetch(ctx, pageURL(page), op)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		items, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)
	}
}
