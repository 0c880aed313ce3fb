package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of a scan.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Direction is the IN/OUT discriminator of an event record.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Variant tags which half of Record is populated.
type Variant string

const (
	// VariantEvent records carry a Direction and rely on Timestamp alone.
	VariantEvent Variant = "event"
	// VariantShift records carry IDCard plus a TimeIn/TimeOut pair.
	VariantShift Variant = "shift"
)

// ErrInvalidDate is returned for a query date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// ValidateDate accepts "" or a calendar date in YYYY-MM-DD form. Dates are
// compared as strings, so anything else would filter silently.
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

// Record is a single attendance entry. Records are append-only.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Variant   Variant   `json:"variant"`

	Direction Direction `json:"type,omitempty"`

	IDCard  string `json:"idCard,omitempty"`
	TimeIn  string `json:"timeIn,omitempty"`
	TimeOut string `json:"timeOut,omitempty"`
}

// Date returns the calendar date of Timestamp in loc. ok is false for a zero
// timestamp.
func (r Record) Date(loc *time.Location) (string, bool) {
	return dateOf(r.Timestamp, loc)
}

// Clock returns the HH:MM:SS wall time of Timestamp in loc, or "".
func (r Record) Clock(loc *time.Location) string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.In(orUTC(loc)).Format(clockLayout)
}

// ToShift migrates an event record into the shift form. An IN event fills
// TimeIn, an OUT event fills TimeOut. Shift records are returned unchanged.
func (r Record) ToShift(idCard string, loc *time.Location) Record {
	if r.Variant == VariantShift {
		return r
	}
	out := r
	out.Variant = VariantShift
	out.Direction = ""
	out.IDCard = idCard
	clock := r.Clock(loc)
	if r.Direction == DirectionOut {
		out.TimeOut = clock
	} else {
		out.TimeIn = clock
	}
	return out
}

// ToEvent migrates a shift record into the event form. A record with only a
// TimeOut becomes an OUT event; anything else becomes IN. Event records are
// returned unchanged.
func (r Record) ToEvent(loc *time.Location) Record {
	if r.Variant == VariantEvent {
		return r
	}
	out := r
	out.Variant = VariantEvent
	out.Direction = DirectionIn
	field := r.TimeIn
	if r.TimeIn == "" && r.TimeOut != "" {
		out.Direction = DirectionOut
		field = r.TimeOut
	}
	if out.Timestamp.IsZero() {
		if t, ok := resolveClock(field, time.Time{}, loc); ok {
			out.Timestamp = t
		}
	}
	out.IDCard, out.TimeIn, out.TimeOut = "", "", ""
	return out
}

// ReportDate is the calendar date a record is listed and grouped under: the
// timestamp date for events, the TimeIn date for shifts. A shift whose TimeIn
// does not parse falls back to its timestamp date.
func (r Record) ReportDate(loc *time.Location) string {
	if d, ok := r.startDate(loc); ok {
		return d
	}
	d, _ := r.Date(loc)
	return d
}

// ShiftClocks returns TimeIn and TimeOut as HH:MM:SS in loc. Values that do
// not parse are returned as stored.
func (r Record) ShiftClocks(loc *time.Location) (in, out string) {
	return clockOf(r.TimeIn, r.Timestamp, loc), clockOf(r.TimeOut, r.Timestamp, loc)
}

func clockOf(val string, base time.Time, loc *time.Location) string {
	t, ok := resolveClock(val, base, loc)
	if !ok {
		return val
	}
	return t.In(orUTC(loc)).Format(clockLayout)
}

// startDate is the date compared against a report's start bound.
func (r Record) startDate(loc *time.Location) (string, bool) {
	if r.Variant != VariantShift {
		return r.Date(loc)
	}
	t, ok := resolveClock(r.TimeIn, r.Timestamp, loc)
	if !ok {
		return "", false
	}
	return dateOf(t, loc)
}

// endDate is the date compared against a report's end bound. An open shift
// (no TimeOut yet) falls back to TimeIn.
func (r Record) endDate(loc *time.Location) (string, bool) {
	if r.Variant != VariantShift {
		return r.Date(loc)
	}
	field := r.TimeOut
	if field == "" {
		field = r.TimeIn
	}
	t, ok := resolveClock(field, r.Timestamp, loc)
	if !ok {
		return "", false
	}
	return dateOf(t, loc)
}

// resolveClock parses a TimeIn/TimeOut value. Full RFC 3339 values stand on
// their own; clock-only values take the calendar date of base.
func resolveClock(val string, base time.Time, loc *time.Location) (time.Time, bool) {
	if val == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true
	}
	if base.IsZero() {
		return time.Time{}, false
	}
	loc = orUTC(loc)
	for _, layout := range []string{clockLayout, "15:04"} {
		c, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		b := base.In(loc)
		return time.Date(b.Year(), b.Month(), b.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), true
	}
	return time.Time{}, false
}

func dateOf(t time.Time, loc *time.Location) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.In(orUTC(loc)).Format(dateLayout), true
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
