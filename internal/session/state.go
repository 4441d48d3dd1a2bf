package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// Ref addresses one card: the index-th result of a result set.
type Ref struct {
	ResultSetID uuid.UUID `json:"result_set_id"`
	Index       int       `json:"index"`
}

// Selection holds the per-session card annotations. It is never persisted.
type Selection struct {
	Liked     []Ref `json:"liked"`
	Compared  []Ref `json:"compared"`
	Enhancing []Ref `json:"enhancing"`
}

// State is everything a client needs to render a session.
type State struct {
	Conversation conversation.Conversation `json:"conversation"`
	Loading      bool                      `json:"loading"`
	LoadingStep  string                    `json:"loading_step,omitempty"`
	FollowUps    []string                  `json:"follow_up_questions"`
	Notice       string                    `json:"notice,omitempty"`
	Selection    Selection                 `json:"selection"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Conversation = s.Conversation.Clone()
	out.FollowUps = append([]string{}, s.FollowUps...)
	out.Selection = Selection{
		Liked:     append([]Ref{}, s.Selection.Liked...),
		Compared:  append([]Ref{}, s.Selection.Compared...),
		Enhancing: append([]Ref{}, s.Selection.Enhancing...),
	}
	return out
}

// resultSet returns the result set addressed by id.
func (s State) resultSet(id uuid.UUID) (trip.ResultSet, bool) {
	pos, ok := s.Conversation.FindResultSet(id)
	if !ok {
		return trip.ResultSet{}, false
	}
	return *s.Conversation.Messages[pos].Results, true
}

func (s State) hasRef(ref Ref) bool {
	set, ok := s.resultSet(ref.ResultSetID)
	return ok && ref.Index >= 0 && ref.Index < set.Len()
}

func newState(c conversation.Conversation) State {
	return State{
		Conversation: c,
		FollowUps:    append([]string{}, DefaultFollowUps...),
		Selection:    Selection{Liked: []Ref{}, Compared: []Ref{}, Enhancing: []Ref{}},
	}
}

type action interface {
	isAction()
}

type (
	// acceptQuery clears the notice, appends the user message and starts loading.
	acceptQuery struct{ msg conversation.Message }

	appendMessage  struct{ msg conversation.Message }
	replaceResults struct{ set trip.ResultSet }
	setLoading     struct{ on bool }
	setLoadingStep struct{ step string }
	setFollowUps   struct{ questions []string }
	setNotice      struct{ text string }
	toggleLike     struct{ ref Ref }
	toggleCompare  struct{ ref Ref }
	beginEnhance   struct{ ref Ref }
	endEnhance     struct{ ref Ref }
	clearSelection struct{}
	retitle        struct{ title string }
	markSaved      struct{ createdAt, updatedAt time.Time }
)

func (acceptQuery) isAction()    {}
func (appendMessage) isAction()  {}
func (replaceResults) isAction() {}
func (setLoading) isAction()     {}
func (setLoadingStep) isAction() {}
func (setFollowUps) isAction()   {}
func (setNotice) isAction()      {}
func (toggleLike) isAction()     {}
func (toggleCompare) isAction()  {}
func (beginEnhance) isAction()   {}
func (endEnhance) isAction()     {}
func (clearSelection) isAction() {}
func (retitle) isAction()        {}
func (markSaved) isAction()      {}

// reduce returns the state after applying a. It never mutates s.
func reduce(s State, a action) State {
	s = s.Clone()

	switch a := a.(type) {
	case acceptQuery:
		s.Notice = ""
		s.Conversation.Append(a.msg)
		s.Loading = true
	case appendMessage:
		s.Conversation.Append(a.msg)
	case replaceResults:
		s.Conversation.ReplaceResultSet(a.set.Clone())
	case setLoading:
		s.Loading = a.on
		if !a.on {
			s.LoadingStep = ""
		}
	case setLoadingStep:
		s.LoadingStep = a.step
	case setFollowUps:
		if len(a.questions) > 0 {
			s.FollowUps = append([]string{}, a.questions...)
		}
	case setNotice:
		s.Notice = a.text
	case toggleLike:
		s.Selection.Liked = toggle(s.Selection.Liked, a.ref)
	case toggleCompare:
		if contains(s.Selection.Compared, a.ref) || len(s.Selection.Compared) < MaxCompared {
			s.Selection.Compared = toggle(s.Selection.Compared, a.ref)
		}
	case beginEnhance:
		if !contains(s.Selection.Enhancing, a.ref) {
			s.Selection.Enhancing = append(s.Selection.Enhancing, a.ref)
		}
		s.Loading = true
	case endEnhance:
		s.Selection.Enhancing = remove(s.Selection.Enhancing, a.ref)
		s.Loading = false
		s.LoadingStep = ""
	case clearSelection:
		s.Selection = Selection{Liked: []Ref{}, Compared: []Ref{}, Enhancing: s.Selection.Enhancing}
	case retitle:
		s.Conversation.Title = a.title
	case markSaved:
		s.Conversation.CreatedAt = a.createdAt
		s.Conversation.UpdatedAt = a.updatedAt
	}
	return s
}

func contains(refs []Ref, ref Ref) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

func toggle(refs []Ref, ref Ref) []Ref {
	if contains(refs, ref) {
		return remove(refs, ref)
	}
	return append(refs, ref)
}

func remove(refs []Ref, ref Ref) []Ref {
	out := refs[:0]
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}
