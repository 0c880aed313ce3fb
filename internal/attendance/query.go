package attendance

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// ListQuery filters the attendance list page.
type ListQuery struct {
	Search string // case-insensitive substring of the user name
	Date   string // YYYY-MM-DD, optional
}

// Filter returns the records matching q, order preserved. Empty fields match
// everything.
func Filter(records []Record, q ListQuery, loc *time.Location) []Record {
	needle := strings.ToLower(q.Search)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if needle != "" && !strings.Contains(strings.ToLower(r.UserName), needle) {
			continue
		}
		if q.Date != "" {
			d, ok := r.Date(loc)
			if !ok || d != q.Date {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ReportQuery selects records for the report page. Start and End are
// inclusive ISO dates; empty bounds are open.
type ReportQuery struct {
	Start  string
	End    string
	UserID string
}

// Aggregate filters records by q, keeps the first record seen for each
// (user, report date) and sorts by report date then user name. The sort is
// stable.
func Aggregate(records []Record, q ReportQuery, loc *time.Location) []Record {
	type key struct{ userID, date string }
	type row struct {
		date string
		rec  Record
	}

	seen := make(map[key]struct{})
	rows := make([]row, 0, len(records))
	for _, r := range records {
		if !q.matches(r, loc) {
			continue
		}
		d := r.ReportDate(loc)
		k := key{r.UserID, d}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, row{date: d, rec: r})
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		return cmp.Or(cmp.Compare(a.date, b.date), cmp.Compare(a.rec.UserName, b.rec.UserName))
	})

	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out
}

func (q ReportQuery) matches(r Record, loc *time.Location) bool {
	if q.UserID != "" && r.UserID != q.UserID {
		return false
	}
	if q.Start != "" {
		d, ok := r.startDate(loc)
		if !ok || d < q.Start {
			return false
		}
	}
	if q.End != "" {
		d, ok := r.endDate(loc)
		if !ok || d > q.End {
			return false
		}
	}
	return true
}

// Summary backs the dashboard counters.
type Summary struct {
	TodayCheckIns   int `json:"todayCheckIns"`
	UniqueAttendees int `json:"uniqueAttendeesToday"`
	TotalRecords    int `json:"totalRecords"`
}

// Summarize counts today's records and distinct users relative to now.
func Summarize(records []Record, now time.Time, loc *time.Location) Summary {
	today, _ := dateOf(now, loc)
	users := make(map[string]struct{})
	s := Summary{TotalRecords: len(records)}
	for _, r := range records {
		if d, ok := r.Date(loc); ok && d == today {
			s.TodayCheckIns++
			users[r.UserID] = struct{}{}
		}
	}
	s.UniqueAttendees = len(users)
	return s
}

// DefaultRecentLimit is the dashboard history length.
const DefaultRecentLimit = 5

// Recent returns up to limit records, newest timestamp first.
func Recent(records []Record, limit int) []Record {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
