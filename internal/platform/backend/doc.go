// Package backend is the REST client for the remote learning backend.
//
// Every endpoint the web service consumes has one typed method on Client.
// Responses are decoded through a single normalization adapter (normalize.go)
// that accepts the field spellings the backend has used over time
// (snake_case, camelCase and all-lowercase) and numeric or string ids, and
// produces the canonical types of package domain.
//
// Failures are classified into the domain error taxonomy: 401 becomes
// domain.ErrAuth, 400 a *domain.ValidationError carrying the backend's message,
// 404 domain.ErrNotFound, 5xx domain.ErrServer and transport failures
// domain.ErrNetwork. Nothing is retried.
package backend
