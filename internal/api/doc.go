// Package api is the browser-facing HTTP surface. Handlers translate
// requests into calls on the session, dashboard, ingestion and onboarding
// services and map their errors onto status codes without leaking internals.
package api
