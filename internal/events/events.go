// Package events stores pairing events in a transactional outbox so the
// surrounding application can drive its "we found each other" flow.
package events

import "fmt"

// EventPairFormed is written when two scan events are mutually linked.
const EventPairFormed = "pair.formed"

// PairFormedPayload captures the minimal data a consumer needs to notify
// both parties of a formed pair.
type PairFormedPayload struct {
	EventID            string  `json:"event_id"`
	PartnerEventID     string  `json:"partner_event_id"`
	SubmitterID        string  `json:"submitter_id"`
	PartnerSubmitterID string  `json:"partner_submitter_id"`
	Payload            string  `json:"payload"`
	DistanceMeters     float64 `json:"distance_meters"`
	SecondsOffset      float64 `json:"seconds_offset"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p PairFormedPayload) ToMap() map[string]any {
	return map[string]any{
		"event_id":             p.EventID,
		"partner_event_id":     p.PartnerEventID,
		"submitter_id":         p.SubmitterID,
		"partner_submitter_id": p.PartnerSubmitterID,
		"payload":              p.Payload,
		"distance_meters":      p.DistanceMeters,
		"seconds_offset":       p.SecondsOffset,
	}
}

// PairDedupeKey returns a stable key for a pair regardless of which side
// records the event first.
func PairDedupeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("pair:%s:%s", a, b)
}
