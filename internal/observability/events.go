package observability

// AuditEvent is the envelope for every message published to the audit
// exchange. Kind groups related events (for example "ws_events"), Name is the
// specific action within the group.
type AuditEvent struct {
	Kind    string      `json:"kind"`
	Name    string      `json:"name"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventHeaders builds the correlation headers attached to a published event.
// Empty values are omitted.
func EventHeaders(requestID, traceID string) map[string]string {
	headers := make(map[string]string, 2)
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["x-trace-id"] = traceID
	}
	return headers
}
