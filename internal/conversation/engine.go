package conversation

import (
	"context"
	"fmt"
	"strings"
)

// Canonical defaulting policy applied once a draft is complete. Lodging has
// fixed check-in/check-out clock times; everything else gets a business-hours
// window so a persisted booking never carries a null time.
const (
	hotelCheckInTime  = "14:00"
	hotelCheckOutTime = "11:00"
	defaultStartTime  = "12:00"
	defaultEndTime    = "13:00"
)

// fieldRequirement pairs a draft predicate with the label surfaced to the
// user when the field is still missing.
type fieldRequirement struct {
	label   string
	present func(Draft) bool
}

func hasDate(d Draft) bool      { return d.Date != "" }
func hasStartTime(d Draft) bool { return d.StartTime != "" }
func hasEndTime(d Draft) bool   { return d.EndTime != "" }
func hasLocation(d Draft) bool  { return d.Location != "" }

// hasPeople treats zero as a present, legitimate answer.
func hasPeople(d Draft) bool { return d.People != nil }

// requiredFields is the per-intent completeness table. Intents absent from
// the table are never complete.
var requiredFields = map[Intent][]fieldRequirement{
	IntentBookRestaurant: {
		{label: "date", present: hasDate},
		{label: "start_time", present: hasStartTime},
		{label: "people", present: hasPeople},
	},
	IntentBookHotel: {
		{label: "check-in date", present: hasDate},
		{label: "check-out date", present: hasEndTime},
		{label: "guests", present: hasPeople},
	},
	IntentBookMeeting: {
		{label: "date", present: hasDate},
		{label: "start_time", present: hasStartTime},
		{label: "end_time", present: hasEndTime},
		{label: "people", present: hasPeople},
		{label: "location", present: hasLocation},
	},
}

// Engine merges per-turn extractions into session drafts and decides when a
// draft is complete. All of its logic is total: a dialogue must always
// produce a reply.
type Engine struct {
	sessions SessionStore
}

// NewEngine builds an engine on top of an injected session store.
func NewEngine(sessions SessionStore) *Engine {
	if sessions == nil {
		panic("conversation: session store required")
	}
	return &Engine{sessions: sessions}
}

// Advance merges one turn's extracted data into the session draft and
// returns the accumulated state. The read-modify-write runs atomically with
// respect to concurrent turns for the same session.
func (e *Engine) Advance(ctx context.Context, sessionID string, extracted Draft) (Draft, error) {
	merged, err := e.sessions.Update(ctx, sessionID, func(d *Draft) {
		mergeTurn(d, extracted)
	})
	if err != nil {
		return Draft{}, fmt.Errorf("conversation: advance session %s: %w", sessionID, err)
	}
	return merged, nil
}

// Snapshot returns the current draft without mutating it.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (Draft, error) {
	return e.sessions.Get(ctx, sessionID)
}

// mergeTurn applies the field-wise monotonic merge: a non-empty extraction
// overwrites, an empty one never regresses a previously filled field.
func mergeTurn(dst *Draft, in Draft) {
	if applyCheckoutHeuristic(dst, in) {
		in.Date = ""
	}
	if in.ServiceType != "" {
		dst.ServiceType = in.ServiceType
	}
	if in.Date != "" {
		dst.Date = in.Date
	}
	if in.StartTime != "" {
		dst.StartTime = in.StartTime
	}
	if in.EndTime != "" {
		dst.EndTime = in.EndTime
	}
	if in.People != nil {
		people := *in.People
		dst.People = &people
	}
	if in.Location != "" {
		dst.Location = in.Location
	}
	if in.Notes != "" {
		dst.Notes = in.Notes
	}
}

// applyCheckoutHeuristic disambiguates "second date mentioned" from
// "corrected date": when the draft already holds a date, still lacks an end
// boundary, and the turn extracts a different date, the new date is the
// checkout and must not overwrite the check-in. The caller consumes the
// turn's date when this reports true.
//
// A genuine date correction arriving before any end_time is indistinguishable
// from a checkout mention under this rule; keeping it behind one named policy
// function lets a dedicated checkout_date extraction replace it without
// touching the merge.
func applyCheckoutHeuristic(dst *Draft, in Draft) bool {
	if dst.Date == "" || dst.EndTime != "" {
		return false
	}
	if in.Date == "" || in.Date == dst.Date {
		return false
	}
	dst.EndTime = in.Date
	return true
}

// Completeness evaluates the per-intent required-field table. Intents
// outside the table never complete.
func Completeness(intent Intent, d Draft) (bool, []string) {
	reqs, ok := requiredFields[intent]
	if !ok {
		return false, []string{}
	}
	missing := []string{}
	for _, req := range reqs {
		if !req.present(d) {
			missing = append(missing, req.label)
		}
	}
	return len(missing) == 0, missing
}

// MissingFieldsReply synthesizes the ask-for-more-info turn for an
// incomplete bookable draft.
func MissingFieldsReply(missing []string) (message, speak string) {
	message = "I need a bit more info: " + strings.Join(missing, ", ")
	speak = "Need " + missing[0]
	return message, speak
}

// ApplyTimeDefaults finalizes the clock times of a complete draft before
// reconciliation. For hotels the extracted times are meaningless and the
// canonical check-in/check-out pair always wins; for everything else an
// invalid or absent time falls back to the business-hours window.
func ApplyTimeDefaults(intent Intent, d Draft) Draft {
	start, startOK := ParseCanonicalTime(d.StartTime)
	end, endOK := ParseCanonicalTime(d.EndTime)

	if intent == IntentBookHotel {
		start, end = hotelCheckInTime, hotelCheckOutTime
	} else {
		if !startOK {
			start = defaultStartTime
		}
		if !endOK {
			end = defaultEndTime
		}
	}

	d.StartTime = start
	d.EndTime = end
	return d
}
