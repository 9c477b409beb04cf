package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldChannelID = "channel_id"
	FieldEventID   = "event_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldState     = "state"

	// Selection fields
	FieldOffset  = "offset_s"
	FieldDiffMS  = "diff_ms"
	FieldGapMS   = "gap_ms"
	FieldAttempt = "attempt"

	// Network fields
	FieldURL    = "url"
	FieldStatus = "status"
)
