package hermes

import "time"

const (
	SubjectConversationSaved = "wayfarer.conversation.saved"
	SubjectResultsEnhanced   = "wayfarer.results.enhanced"
	SubjectPlanFinalized     = "wayfarer.plan.finalized"
	SubjectBookingConfirmed  = "wayfarer.booking.confirmed"

	// SubjectBookingRequested carries a booking request from another
	// service. The payload is a booking request document.
	SubjectBookingRequested = "wayfarer.booking.requested"
)

// ConversationSaved is emitted after every successful conversation write.
type ConversationSaved struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"message_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ResultsEnhanced is emitted when one card of a result set was replaced.
type ResultsEnhanced struct {
	ConversationID string `json:"conversation_id"`
	ResultSetID    string `json:"result_set_id"`
	Index          int    `json:"index"`
	Kind           string `json:"kind"`
	Label          string `json:"label"`
	Instruction    string `json:"instruction"`
}

type PlanFinalized struct {
	ConversationID string `json:"conversation_id"`
	ResultSetID    string `json:"result_set_id"`
	Index          int    `json:"index"`
	Title          string `json:"title"`
}

type BookingConfirmed struct {
	BookingID     string  `json:"booking_id"`
	Kind          string  `json:"kind"`
	Item          string  `json:"item"`
	TotalINR      float64 `json:"total_inr"`
	TransactionID string  `json:"transaction_id"`
}
