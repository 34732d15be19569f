//go:build integration

// Package testdb locates the external stores used by integration tests.
//
// Tests call PostgresURL or RedisAddr at the top; both skip the test when the
// variable is unset, except in CI where a missing store is a failure:
//
//	func TestStoreIntegration(t *testing.T) {
//	    dbURL := testdb.PostgresURL(t)
//	    ...
//	}
package testdb
