package hermes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSubjectsShareNamespace(t *testing.T) {
	for _, s := range []string{SubjectConversationSaved, SubjectResultsEnhanced, SubjectPlanFinalized, SubjectBookingConfirmed, SubjectBookingRequested} {
		if !strings.HasPrefix(s, "wayfarer.") {
			t.Errorf("subject %q outside the wayfarer namespace", s)
		}
	}
}

func TestConversationSavedWireNames(t *testing.T) {
	ev := ConversationSaved{
		ConversationID: "99",
		Title:          "Goa Finalized Trip",
		MessageCount:   4,
		UpdatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"conversation_id", "title", "message_count", "updated_at"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}
