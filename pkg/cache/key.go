package cache

import (
	"strconv"
)

// AllUsersKey is the sentinel key for the full user collection.
const AllUsersKey = "AllUsers"

// UserKey returns the cache key for a single user lookup.
//
// Example:
//
//	UserKey(2) == "User_2"
func UserKey(id int) string {
	return "User_" + strconv.Itoa(id)
}
