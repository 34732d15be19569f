// Package redis provides the Redis-backed session area: one hash per browser
// key holding the well-known session fields, expiring after the configured TTL.
package redis
