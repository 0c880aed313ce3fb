package attendance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rfid-attendance/internal/roster"
)

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveScan(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[outcome]++
}

func newTestScanner(t *testing.T, opts ...Option) (*Scanner, *Repository) {
	t.Helper()
	repo := NewRepository(Seed)
	s := NewScanner(roster.New(roster.Seed), repo, zaptest.NewLogger(t), opts...)
	t.Cleanup(s.Close)
	return s, repo
}

func TestScan_KnownTag(t *testing.T) {
	s, repo := newTestScanner(t, WithResetAfter(time.Hour))
	before := time.Now()

	res, err := s.Scan(context.Background(), "A1B2C3D4")
	require.NoError(t, err)

	assert.Equal(t, "1", res.Record.UserID)
	assert.Equal(t, "Budi Santoso", res.Record.UserName)
	assert.Equal(t, StatusSuccess, res.Record.Status)
	assert.Equal(t, DirectionIn, res.Record.Direction)
	assert.Equal(t, VariantEvent, res.Record.Variant)
	assert.NotEmpty(t, res.Record.ID)
	assert.False(t, res.Record.Timestamp.Before(before.Truncate(time.Second)))
	assert.Equal(t, "Attendance Recorded", res.Notice.Title)
	assert.Equal(t, "Budi Santoso has been checked in.", res.Notice.Message)

	list := repo.ListRecords()
	require.Len(t, list, len(Seed)+1)
	assert.Equal(t, res.Record, list[0], "prepended")

	st := s.State()
	assert.Equal(t, DisplaySuccess, st.Status)
	require.NotNil(t, st.User)
	assert.Equal(t, "1", st.User.ID)
}

func TestScan_UnknownTag(t *testing.T) {
	obs := &countingObserver{}
	s, repo := newTestScanner(t, WithResetAfter(time.Hour), WithObserver(obs))

	res, err := s.Scan(context.Background(), "ZZZZZZZZ")
	require.ErrorIs(t, err, ErrUnknownTag)
	assert.Equal(t, "Unknown RFID Card", res.Notice.Title)
	assert.Equal(t, len(Seed), repo.Len(), "no record written")
	assert.Equal(t, DisplayError, s.State().Status)
	assert.Nil(t, s.State().User)
	assert.Equal(t, 1, obs.counts["unknown"])
}

func TestScan_EmptyToken(t *testing.T) {
	s, repo := newTestScanner(t)
	_, err := s.Scan(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, len(Seed), repo.Len())
	assert.Equal(t, DisplayIdle, s.State().Status)
}

func TestScan_CancelledContext(t *testing.T) {
	s, repo := newTestScanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Scan(ctx, "A1B2C3D4")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, len(Seed), repo.Len())
}

func TestScan_RepeatedScansAreNotSuppressed(t *testing.T) {
	n := 0
	obs := &countingObserver{}
	s, repo := newTestScanner(t,
		WithResetAfter(time.Hour),
		WithObserver(obs),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("scan-%d", n) }),
	)

	for i := 0; i < 3; i++ {
		_, err := s.Scan(context.Background(), "E5F6G7H8")
		require.NoError(t, err)
	}

	list := repo.ListRecords()
	assert.Equal(t, []string{"scan-3", "scan-2", "scan-1"}, ids(list[:3]))
	assert.Equal(t, 3, obs.counts["success"])
}

func TestScan_ResetsToIdle(t *testing.T) {
	s, _ := newTestScanner(t, WithResetAfter(20*time.Millisecond))

	_, err := s.Scan(context.Background(), "A1B2C3D4")
	require.NoError(t, err)
	assert.Equal(t, DisplaySuccess, s.State().Status)

	assert.Eventually(t, func() bool {
		return s.State().Status == DisplayIdle
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, s.State().User)
}

func TestScan_NewScanRearmsReset(t *testing.T) {
	s, _ := newTestScanner(t, WithResetAfter(400*time.Millisecond))
	ctx := context.Background()

	_, err := s.Scan(ctx, "A1B2C3D4")
	require.NoError(t, err)
	time.Sleep(300 * time.Millisecond)

	_, err = s.Scan(ctx, "ZZZZZZZZ")
	require.ErrorIs(t, err, ErrUnknownTag)

	// The first timer would have fired here; the error state must survive it.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, DisplayError, s.State().Status)

	assert.Eventually(t, func() bool {
		return s.State().Status == DisplayIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScanner_StaleResetIgnored(t *testing.T) {
	s, _ := newTestScanner(t, WithResetAfter(time.Hour))
	_, err := s.Scan(context.Background(), "A1B2C3D4")
	require.NoError(t, err)

	s.mu.Lock()
	stale := s.gen - 1
	s.mu.Unlock()

	s.reset(stale)
	assert.Equal(t, DisplaySuccess, s.State().Status)
}

func TestScanner_InjectedClock(t *testing.T) {
	fixed := time.Date(2025, 4, 12, 8, 15, 0, 0, time.UTC)
	s, _ := newTestScanner(t, WithResetAfter(time.Hour), WithClock(func() time.Time { return fixed }))

	res, err := s.Scan(context.Background(), "I9J0K1L2")
	require.NoError(t, err)
	assert.Equal(t, fixed, res.Record.Timestamp)
	assert.Equal(t, fixed, s.State().Since)
}
