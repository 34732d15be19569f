// Package domain contains the canonical data model of the learning client:
// sessions, cognitive profiles, courses, strategies, onboarding questions and
// the reconciled dashboard view. Every backend response variant is mapped onto
// these types at the network boundary; nothing above that boundary sees raw
// backend shapes.
package domain
