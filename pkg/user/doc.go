// Package user fetches reqres users, maps them to [User] and caches results.
//
// [Service] is the entry point:
//
//	svc, err := user.NewService(transport, cache.NewMemory(), user.Config{CacheTTL: 5 * time.Minute})
//	u, found, err := svc.GetUserByID(ctx, 2)
//	all, err := svc.GetAllUsers(ctx)
//
// # Caching
//
// Single lookups are cached under "User_<id>", the collection under
// "AllUsers". Only successful results are cached: a 404, a missing payload or
// any error leaves the cache untouched, so a missing user is looked up again
// on every call.
//
// Concurrent misses on the same key are not coalesced; each caller goes to the
// network independently.
//
// # Errors
//
//   - absent user: (User{}, false, nil)
//   - unexpected status: *RequestError, matches ErrRequestFailed
//   - transport fault after retries: *TransportError, matches ErrTransport
//   - undecodable body: matches ErrMalformedResponse
//
// A page without a data field ends GetAllUsers early with the users gathered
// so far and no error.
package user
