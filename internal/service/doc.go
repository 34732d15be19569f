// Package service holds what the application-level services share: the
// mapping from backend failures to the outcomes callers act on.
//
// Each use case lives in its own subpackage:
//
//   - guard: the access check in front of every protected view
//   - profile: profile-or-onboarding resolution
//   - recommendation: course/strategy reconciliation across backend versions
//   - dashboard: the full re-resolution of the dashboard view
//   - ingestion: the two-step "add course, generate strategy" workflow
//   - onboarding: the questionnaire state machine
//   - account: login, registration, logout and token refresh
//
// Services receive their dependencies through constructor injection and
// return sentinel or typed errors from package domain; the API layer maps
// those to HTTP status codes.
package service
