package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/reqres-client/pkg/logging"
)

// Page is one decoded page.
type Page[T any] struct {
	// Number is the page number the server reported.
	Number int

	// TotalPages is the page count the server reported with this page.
	TotalPages int

	// Items are the page entries in server order.
	Items []T

	// HasData is false when the page body had no data field.
	HasData bool
}

// FetchFunc fetches a single page by its 1-based number.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Drain fetches pages from 1 until the reported page count is reached and
// returns all items in order.
//
// A page with HasData false ends the walk and the items gathered so far are
// returned with a nil error. Any error from fetch is returned wrapped and the
// gathered items are dropped.
func Drain[T any](ctx context.Context, fetch FetchFunc[T], logger zerolog.Logger) ([]T, error) {
	var all []T

	page := 1
	totalPages := 0
	for {
		p, err := fetch(ctx, page)
		if err != nil {
			logger.Error().
				Err(err).
				Int(logging.FieldPage, page).
				Int("accumulated", len(all)).
				Msg("Page fetch failed, discarding accumulated results")
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if !p.HasData {
			logger.Warn().
				Int(logging.FieldPage, page).
				Int("accumulated", len(all)).
				Msg("Page has no data, returning partial results")
			break
		}

		all = append(all, p.Items...)

		// Last writer wins: a later page may move the bound.
		totalPages = p.TotalPages
		logger.Debug().
			Int(logging.FieldPage, page).
			Int(logging.FieldTotalPages, totalPages).
			Int("items", len(p.Items)).
			Msg("Page fetched")

		page++
		if page > totalPages {
			break
		}
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}
