package report

import (
	"fmt"
	"strconv"
	"time"

	"rfid-attendance/internal/attendance"
	"rfid-attendance/internal/roster"
)

// Format selects the column set of an exported report.
type Format string

const (
	// FormatShift is one row per shift with literal uppercase labels.
	FormatShift Format = "shift"
	// FormatEvent is one row per scan event with descriptive headers.
	FormatEvent Format = "event"
)

var (
	shiftHeader = []string{"NO", "ID CARD", "NAME", "DATE", "TIME IN", "TIME OUT"}
	eventHeader = []string{"Name", "Department", "Position", "Date", "Time", "Type", "Status"}
)

// ParseFormat maps a query value to a Format. Empty means FormatShift.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatShift:
		return FormatShift, nil
	case FormatEvent:
		return FormatEvent, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Users looks up roster details for a record. Deleted users leave those
// columns blank.
type Users interface {
	Get(id string) (roster.User, error)
}

// Table is a serialized report: the rows that will land in the workbook plus
// the range used to name the file.
type Table struct {
	Format Format     `json:"format"`
	Start  string     `json:"start,omitempty"`
	End    string     `json:"end,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// FileName is the download name for the table's range.
func (t Table) FileName() string {
	return FileName(t.Start, t.End)
}

// BuildTable turns aggregated records into rows of the given format.
func BuildTable(records []attendance.Record, users Users, format Format, q attendance.ReportQuery, loc *time.Location) Table {
	t := Table{Format: format, Start: q.Start, End: q.End, Rows: make([][]string, 0, len(records))}
	switch format {
	case FormatEvent:
		t.Header = eventHeader
		for _, r := range records {
			t.Rows = append(t.Rows, eventRow(r, lookup(users, r.UserID), loc))
		}
	default:
		t.Format = FormatShift
		t.Header = shiftHeader
		for i, r := range records {
			u := lookup(users, r.UserID)
			t.Rows = append(t.Rows, shiftRow(i+1, r.ToShift(u.RFIDTag, loc), loc))
		}
	}
	return t
}

func shiftRow(no int, r attendance.Record, loc *time.Location) []string {
	in, out := r.ShiftClocks(loc)
	return []string{strconv.Itoa(no), r.IDCard, r.UserName, r.ReportDate(loc), in, out}
}

func eventRow(r attendance.Record, u roster.User, loc *time.Location) []string {
	ev := r.ToEvent(loc)
	date, _ := ev.Date(loc)
	return []string{
		ev.UserName,
		u.Department,
		u.Position,
		date,
		ev.Clock(loc),
		string(ev.Direction),
		string(ev.Status),
	}
}

func lookup(users Users, id string) roster.User {
	if users == nil {
		return roster.User{}
	}
	u, err := users.Get(id)
	if err != nil {
		return roster.User{}
	}
	return u
}

// FileName returns Attendance_Report.xlsx, with a _<start>_to_<end> suffix
// when both bounds are set.
func FileName(start, end string) string {
	name := "Attendance_Report"
	if start != "" && end != "" {
		name += "_" + start + "_to_" + end
	}
	return name + ".xlsx"
}
