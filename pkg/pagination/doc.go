// Package pagination drains page-numbered collections one page at a time.
//
// Each page reports the total page count. The drainer requests pages 1, 2, ...
// and keeps going while the next page number does not exceed the count
// reported by the most recently fetched page, so a bound that changes mid-walk
// is followed rather than fixed from page 1.
//
// Example usage:
//
//	items, err := pagination.Drain(ctx, func(ctx context.Context, page int) (pagination.Page[User], error) {
//		return fetchUsersPage(ctx, page)
//	}, logger)
//
// The drainer:
//   - Fetches pages strictly in order, never in parallel
//   - Stops early, without error, on a page that carries no data
//   - Aborts on the first fetch error and discards what it accumulated
package pagination
