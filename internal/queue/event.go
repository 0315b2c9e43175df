// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditEvent mirrors one audit revision onto the broker.  It carries
// enough context for downstream consumers (compliance log, analytics)
// to act without querying the primary database.  The revision row itself
// stores only id, timestamp and acting login; the entity fields exist
// only on the wire.
type AuditEvent struct {
	RevisionID uint64 `json:"revision_id"`
	Username   string `json:"username"`
	Entity     string `json:"entity"`
	Action     string `json:"action"`
	EntityID   uint64 `json:"entity_id"`
	Ts         string `json:"ts"`
}
