// Package store defines the persistence contract for browser sessions.
//
// A SessionStore keeps one domain.Session per browser key, flattened into the
// well-known session fields. Implementations live here (memory) and under
// internal/platform (redis, postgres). Stores report failures as errors;
// turning those into "no session" is the job of package session.
package store
