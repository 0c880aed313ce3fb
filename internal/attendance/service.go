package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rfid-attendance/internal/roster"
)

var (
	ErrEmptyToken = errors.New("scan token required")
	ErrUnknownTag = errors.New("rfid tag not registered")
)

// DefaultResetAfter is how long a scan result stays on display.
const DefaultResetAfter = 2 * time.Second

// DisplayStatus is the scanner's visible state.
type DisplayStatus string

const (
	DisplayIdle    DisplayStatus = "idle"
	DisplaySuccess DisplayStatus = "success"
	DisplayError   DisplayStatus = "error"
)

// Notice is the user-facing message produced by a scan.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   string `json:"level"` // success or error
}

// DisplayState is what the scanner is currently showing.
type DisplayState struct {
	Status DisplayStatus `json:"status"`
	User   *roster.User  `json:"user,omitempty"`
	Notice *Notice       `json:"notice,omitempty"`
	Since  time.Time     `json:"since"`
}

// ScanResult is returned by Scan. Record and User are zero on failure.
type ScanResult struct {
	User   roster.User `json:"user"`
	Record Record      `json:"record"`
	Notice Notice      `json:"notice"`
}

// Directory resolves RFID tags to users.
type Directory interface {
	FindByTag(tag string) (roster.User, bool)
}

// ScanObserver is told about every scan outcome ("success" or "unknown").
type ScanObserver interface {
	ObserveScan(outcome string)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithResetAfter overrides DefaultResetAfter.
func WithResetAfter(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.resetAfter = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 record id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Scanner) { s.newID = gen }
}

// WithObserver registers a ScanObserver.
func WithObserver(o ScanObserver) Option {
	return func(s *Scanner) { s.observer = o }
}

// Scanner resolves scanned tags into attendance records and owns the
// display state. Every scan re-arms one reset timer; an older timer can never
// overwrite the state of a newer scan.
type Scanner struct {
	users      Directory
	records    *Repository
	logger     *zap.Logger
	observer   ScanObserver
	resetAfter time.Duration
	now        func() time.Time
	newID      func() string

	mu    sync.Mutex
	state DisplayState
	timer *time.Timer
	gen   uint64
}

// NewScanner creates a scanner writing into records.
func NewScanner(users Directory, records *Repository, logger *zap.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scanner{
		users:      users,
		records:    records,
		logger:     logger,
		resetAfter: DefaultResetAfter,
		now:        time.Now,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = DisplayState{Status: DisplayIdle, Since: s.now()}
	return s
}

// Scan records an IN event for the user holding token. An unknown token
// yields ErrUnknownTag together with the failure notice.
func (s *Scanner) Scan(ctx context.Context, token string) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}
	if token == "" {
		return ScanResult{}, ErrEmptyToken
	}

	user, ok := s.users.FindByTag(token)
	if !ok {
		notice := Notice{
			Title:   "Unknown RFID Card",
			Message: "This card is not registered in the system.",
			Level:   "error",
		}
		s.show(DisplayState{Status: DisplayError, Notice: &notice})
		s.observe("unknown")
		s.logger.Warn("scan rejected: unknown tag", zap.String("tag", token))
		return ScanResult{Notice: notice}, fmt.Errorf("%w: %s", ErrUnknownTag, token)
	}

	rec := s.records.InsertRecord(Record{
		ID:        s.newID(),
		UserID:    user.ID,
		UserName:  user.Name,
		Timestamp: s.now().UTC(),
		Status:    StatusSuccess,
		Variant:   VariantEvent,
		Direction: DirectionIn,
	})
	notice := Notice{
		Title:   "Attendance Recorded",
		Message: fmt.Sprintf("%s has been checked in.", user.Name),
		Level:   "success",
	}
	s.show(DisplayState{Status: DisplaySuccess, User: &user, Notice: &notice})
	s.observe("success")
	s.logger.Info("scan recorded",
		zap.String("record_id", rec.ID),
		zap.String("user_id", user.ID),
		zap.String("user_name", user.Name),
	)
	return ScanResult{User: user, Record: rec, Notice: notice}, nil
}

// State returns the current display state.
func (s *Scanner) State() DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels a pending reset.
func (s *Scanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scanner) show(st DisplayState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Since = s.now()
	s.state = st

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.resetAfter, func() { s.reset(gen) })
}

func (s *Scanner) reset(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Stop can lose the race with an already-fired timer.
	if gen != s.gen {
		return
	}
	s.state = DisplayState{Status: DisplayIdle, Since: s.now()}
	s.timer = nil
}

func (s *Scanner) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveScan(outcome)
	}
}
