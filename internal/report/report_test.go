package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"rfid-attendance/internal/attendance"
	"rfid-attendance/internal/queue"
	"rfid-attendance/internal/roster"
)

func scan(id, userID, name string, ts time.Time) attendance.Record {
	return attendance.Record{
		ID:        id,
		UserID:    userID,
		UserName:  name,
		Timestamp: ts,
		Status:    attendance.StatusSuccess,
		Variant:   attendance.VariantEvent,
		Direction: attendance.DirectionIn,
	}
}

func readRows(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, 1, f.SheetCount)
	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	require.NoError(t, err)
	return name, rows
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Attendance_Report.xlsx", FileName("", ""))
	assert.Equal(t, "Attendance_Report.xlsx", FileName("2025-04-01", ""))
	assert.Equal(t, "Attendance_Report.xlsx", FileName("", "2025-04-30"))
	assert.Equal(t, "Attendance_Report_2025-04-01_to_2025-04-30.xlsx", FileName("2025-04-01", "2025-04-30"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatShift, f)
	f, err = ParseFormat("event")
	require.NoError(t, err)
	assert.Equal(t, FormatEvent, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestBuildTable_ShiftFromSeed(t *testing.T) {
	q := attendance.ReportQuery{Start: "2025-04-12", End: "2025-04-12"}
	records := attendance.Aggregate(attendance.Seed, q, time.UTC)

	table := BuildTable(records, roster.New(roster.Seed), FormatShift, q, time.UTC)
	assert.Equal(t, []string{"NO", "ID CARD", "NAME", "DATE", "TIME IN", "TIME OUT"}, table.Header)
	assert.Equal(t, [][]string{
		{"1", "4567890123", "Ahmad Wijaya", "2025-04-12", "09:00:00", "17:00:00"},
		{"2", "1234567890", "Budi Santoso", "2025-04-12", "09:00:00", "17:00:00"},
		{"3", "9876543210", "Siti Rahayu", "2025-04-12", "09:00:00", "17:00:00"},
	}, table.Rows)
	assert.Equal(t, "Attendance_Report_2025-04-12_to_2025-04-12.xlsx", table.FileName())
}

func TestBuildTable_ShiftMigratesEvents(t *testing.T) {
	records := []attendance.Record{scan("s1", "1", "Budi Santoso", time.Date(2025, 4, 12, 1, 30, 0, 0, time.UTC))}
	wib := time.FixedZone("WIB", 7*3600)

	table := BuildTable(records, roster.New(roster.Seed), "", attendance.ReportQuery{}, wib)
	assert.Equal(t, FormatShift, table.Format)
	assert.Equal(t, [][]string{{"1", "A1B2C3D4", "Budi Santoso", "2025-04-12", "08:30:00", ""}}, table.Rows)
}

func TestBuildTable_Event(t *testing.T) {
	records := []attendance.Record{
		scan("s1", "2", "Siti Rahayu", time.Date(2025, 4, 12, 7, 45, 10, 0, time.UTC)),
		scan("s2", "gone", "Former Staff", time.Date(2025, 4, 12, 8, 0, 0, 0, time.UTC)),
	}
	table := BuildTable(records, roster.New(roster.Seed), FormatEvent, attendance.ReportQuery{}, time.UTC)
	assert.Equal(t, []string{"Name", "Department", "Position", "Date", "Time", "Type", "Status"}, table.Header)
	assert.Equal(t, [][]string{
		{"Siti Rahayu", "Human Resources", "HR Manager", "2025-04-12", "07:45:10", "IN", "SUCCESS"},
		{"Former Staff", "", "", "2025-04-12", "08:00:00", "IN", "SUCCESS"},
	}, table.Rows, "orphaned records keep their name")
}

func TestExporter_WriteTo(t *testing.T) {
	records := []attendance.Record{
		scan("a", "1", "Budi Santoso", time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)),
		scan("b", "1", "Budi Santoso", time.Date(2025, 4, 12, 17, 0, 0, 0, time.UTC)),
	}
	q := attendance.ReportQuery{}
	table := BuildTable(attendance.Aggregate(records, q, time.UTC), roster.New(roster.Seed), FormatEvent, q, time.UTC)

	var buf bytes.Buffer
	n, err := NewExporter(zaptest.NewLogger(t)).WriteTo(&buf, table)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	sheet, rows := readRows(t, buf.Bytes())
	assert.Equal(t, "Attendance Report", sheet)
	require.Len(t, rows, 2, "header plus one deduplicated row")
	assert.Equal(t, table.Header, rows[0])
	assert.Equal(t, []string{"Budi Santoso", "Engineering", "Senior Developer", "2025-04-12", "09:00:00", "IN", "SUCCESS"}, rows[1])
}

func TestExporter_Empty(t *testing.T) {
	e := NewExporter(zaptest.NewLogger(t))
	table := BuildTable(nil, nil, FormatShift, attendance.ReportQuery{}, time.UTC)

	var buf bytes.Buffer
	_, err := e.WriteTo(&buf, table)
	assert.ErrorIs(t, err, ErrEmptyReport)
	assert.Zero(t, buf.Len())

	dir := t.TempDir()
	_, err = e.SaveTo(dir, table)
	assert.ErrorIs(t, err, ErrEmptyReport)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExporter_SaveTo(t *testing.T) {
	q := attendance.ReportQuery{Start: "2025-04-01", End: "2025-04-30"}
	table := BuildTable(attendance.Aggregate(attendance.Seed, q, time.UTC), nil, FormatShift, q, time.UTC)

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := NewExporter(nil).SaveTo(dir, table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Attendance_Report_2025-04-01_to_2025-04-30.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, rows := readRows(t, data)
	require.Len(t, rows, 4)
	assert.Equal(t, "ID CARD", rows[0][1])
	assert.Equal(t, "Ahmad Wijaya", rows[1][2])
}

func TestExporter_SaveToRejectsEscapingName(t *testing.T) {
	q := attendance.ReportQuery{Start: "0/../../escaped", End: "9"}
	table := BuildTable(attendance.Aggregate(attendance.Seed, q, time.UTC), nil, FormatShift, q, time.UTC)
	require.NotEmpty(t, table.Rows)

	root := t.TempDir()
	dir := filepath.Join(root, "exports")
	_, err := NewExporter(nil).SaveTo(dir, table)
	require.ErrorIs(t, err, ErrUnsafeFileName)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written anywhere")
}

func TestRangeFor(t *testing.T) {
	now := time.Date(2025, 2, 14, 23, 30, 0, 0, time.UTC)

	start, end, err := RangeFor(PeriodMonthly, now, time.UTC, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", start)
	assert.Equal(t, "2025-02-28", end)

	start, end, err = RangeFor(PeriodDaily, now, time.UTC, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-14", start)
	assert.Equal(t, "2025-02-14", end)

	wib := time.FixedZone("WIB", 7*3600)
	start, end, err = RangeFor(PeriodDaily, now, wib, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-15", start, "today is computed in the configured zone")
	assert.Equal(t, "2025-02-15", end)

	leap := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	_, end, err = RangeFor(PeriodMonthly, leap, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", end)

	start, end, err = RangeFor(PeriodCustom, now, time.UTC, "2025-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", start)
	assert.Empty(t, end)

	_, _, err = RangeFor("weekly", now, time.UTC, "", "")
	assert.Error(t, err)

	for _, bad := range [][2]string{
		{"2025-4-1", ""},
		{"", "2025-04-31"},
		{"0/../../escaped", "9"},
		{"12/04/2025", "2025-04-30"},
	} {
		_, _, err = RangeFor(PeriodCustom, now, time.UTC, bad[0], bad[1])
		assert.ErrorIs(t, err, attendance.ErrInvalidDate, "%v", bad)
	}
}

type exportCounter map[string]int

func (c exportCounter) ObserveExport(mode, result string) { c[mode+":"+result]++ }

func TestWorker_Handle(t *testing.T) {
	dir := t.TempDir()
	counts := exportCounter{}
	w := NewWorker(NewExporter(nil), dir, counts, zaptest.NewLogger(t))

	q := attendance.ReportQuery{}
	job := Job{
		ID:          "job-1",
		RequestedBy: "owner",
		RequestedAt: time.Now(),
		Table:       BuildTable(attendance.Seed, roster.New(roster.Seed), FormatShift, q, time.UTC),
	}
	msg, err := job.Message()
	require.NoError(t, err)
	assert.Equal(t, JobType, msg.Type)

	path, err := w.Handle(msg)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "Attendance_Report.xlsx", filepath.Base(path))

	empty := Job{ID: "job-2", Table: Table{Format: FormatShift, Header: shiftHeader}}
	msg, err = empty.Message()
	require.NoError(t, err)
	_, err = w.Handle(msg)
	assert.ErrorIs(t, err, ErrEmptyReport)

	_, err = w.Handle(queue.Message{Type: "other"})
	assert.Error(t, err)
	_, err = w.Handle(queue.Message{Type: JobType, Body: json.RawMessage(`"nope"`)})
	assert.Error(t, err)

	assert.Equal(t, exportCounter{"job:ok": 1, "job:empty": 1}, counts)
}
