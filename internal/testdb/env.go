//go:build integration

package testdb

import (
	"os"
	"testing"
)

// Environment variables read by the helpers.
const (
	EnvPostgresURL = "ATHENA_TEST_DATABASE_URL"
	EnvRedisAddr   = "ATHENA_TEST_REDIS_ADDR"
)

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsCI reports whether the tests run under a CI system.
func IsCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// PostgresURL returns the test database URL.
func PostgresURL(t testing.TB) string {
	t.Helper()
	return lookup(t, EnvPostgresURL)
}

// RedisAddr returns the test Redis address.
func RedisAddr(t testing.TB) string {
	t.Helper()
	return lookup(t, EnvRedisAddr)
}

func lookup(t testing.TB, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v != "" {
		return v
	}
	if IsCI() {
		t.Fatalf("%s must be set in CI", name)
	}
	t.Skipf("%s not set", name)
	return ""
}
