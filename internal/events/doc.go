// Package events delivers pipeline outcome events via pluggable publishers.
//
// The default implementation publishes JSON payloads to NATS subjects scoped
// under the configured bus name and gracefully degrades to a no-op when no
// bus is configured. The orchestrator depends only on the Publisher
// interface; a failed publish surfaces as an event-publish error so the
// caller can treat a completion event that never reached the bus as a
// session failure.
package events
