// Package normalize turns raw planner payloads into canonical result sets.
//
// Every function here is pure and total: bad input never panics or errors,
// it degrades to an empty set with an explanatory summary, or for bus routes
// to a fixed set of sample routes.
package normalize

import (
	"bytes"
	"encoding/json"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// Result is a normalized set plus the one-line summary shown in the
// assistant bubble.
type Result struct {
	Set      trip.ResultSet
	Summary  string
	Fallback bool // true when Set holds sample data instead of the reply
}

// Empty reports whether there is nothing to attach.
func (r Result) Empty() bool {
	return r.Set.Len() == 0
}

func emptyResult(kind trip.Kind, summary string) Result {
	return Result{Set: trip.ResultSet{Kind: kind}, Summary: summary}
}

// isBlank reports whether a raw payload is missing, null or an empty string.
func isBlank(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`))
}
