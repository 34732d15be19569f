// Package events carries session lifecycle notifications between components.
//
// The session service emits a SessionEvent whenever a browser's session is
// stored or cleared; components holding per-user state (the dashboard
// resolver, the ingestion workflow) register handlers to react without the
// session service knowing about them.
package events
