package amadeus

import (
	"context"
	"fmt"
	"net/url"
)

// page is the envelope shared by the paginated list endpoints: a data array
// plus an opaque cursor URL pointing at the next page, absent on the last.
type page[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
	} `json:"meta"`
}

// fetchAllPages issues the initial request and follows meta.links.next
// cursors until exhausted, concatenating the pages' data in order. The
// cursor URL is already fully formed by the upstream and is requested as-is.
// Any page failing aborts the whole sequence; nothing partial is returned.
// A cursor chain longer than the client's page ceiling fails with
// ErrPaginationExceeded instead of looping forever.
func fetchAllPages[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var current page[T]
	if err := c.get(ctx, path, query, &current); err != nil {
		return nil, err
	}

	items := current.Data
	for pages := 1; current.Meta.Links.Next != ""; pages++ {
		if pages >= c.maxPages {
			return nil, fmt.Errorf("%w: %d pages of %s", ErrPaginationExceeded, pages, path)
		}
		next := current.Meta.Links.Next
		current = page[T]{}
		if err := c.getURL(ctx, next, &current); err != nil {
			return nil, err
		}
		items = append(items, current.Data...)
	}

	return items, nil
}
