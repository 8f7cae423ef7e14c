package conversation

// Intent is the closed set of conversational intents the model may emit.
type Intent string

const (
	IntentBookRestaurant    Intent = "book_restaurant"
	IntentBookHotel         Intent = "book_hotel"
	IntentBookMeeting       Intent = "book_meeting"
	IntentCheckAvailability Intent = "check_availability"
	IntentModifyBooking     Intent = "modify_booking"
	IntentCancelBooking     Intent = "cancel_booking"
	IntentGreeting          Intent = "greeting"
	IntentUnknown           Intent = "unknown"
)

var knownIntents = map[Intent]struct{}{
	IntentBookRestaurant:    {},
	IntentBookHotel:         {},
	IntentBookMeeting:       {},
	IntentCheckAvailability: {},
	IntentModifyBooking:     {},
	IntentCancelBooking:     {},
	IntentGreeting:          {},
	IntentUnknown:           {},
}

// ParseIntent maps a raw model string onto the closed intent set.
// Anything unrecognized coerces to IntentUnknown instead of rejecting the
// whole payload.
func ParseIntent(s string) Intent {
	if _, ok := knownIntents[Intent(s)]; ok {
		return Intent(s)
	}
	return IntentUnknown
}

// Bookable reports whether the intent drives the slot-filling flow toward a
// persisted booking.
func (i Intent) Bookable() bool {
	switch i {
	case IntentBookRestaurant, IntentBookHotel, IntentBookMeeting:
		return true
	}
	return false
}

// Draft is the per-session accumulation of booking fields. People is a
// pointer because zero guests is a legitimate answer, distinct from "not
// given yet".
type Draft struct {
	ServiceType string `json:"service_type"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	People      *int   `json:"people"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

// TurnResult is the validated shape of one model turn.
type TurnResult struct {
	Message       string   `json:"message"`
	Speak         string   `json:"speak"`
	Intent        Intent   `json:"intent"`
	Data          Draft    `json:"data"`
	MissingFields []string `json:"missing_fields"`
	Confidence    float64  `json:"confidence"`
}
