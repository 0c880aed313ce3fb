package roster

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"rfid-attendance/internal/pkg/validation"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicateTag = errors.New("rfid tag already assigned")
)

// User is a person who can badge in with an RFID tag.
type User struct {
	ID         string `json:"id"`
	RFIDTag    string `json:"rfidTag"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	ImageURL   string `json:"imageUrl"`
}

// Input carries the editable fields of a User.
type Input struct {
	Name       string `json:"name" validate:"required,min=2"`
	Department string `json:"department" validate:"required,min=2"`
	Position   string `json:"position" validate:"required,min=2"`
	RFIDTag    string `json:"rfidTag" validate:"required,min=4"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
}

// Roster is the in-memory user list. Order is insertion order.
type Roster struct {
	mu    sync.RWMutex
	users []User
}

// New returns a roster holding a copy of seed.
func New(seed []User) *Roster {
	return &Roster{users: slices.Clone(seed)}
}

// List returns a snapshot of all users.
func (r *Roster) List() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.users)
}

// Get returns the user with the given id.
func (r *Roster) Get(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.users[i], nil
	}
	return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// FindByTag does an exact, linear match on the RFID tag.
func (r *Roster) FindByTag(tag string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.RFIDTag == tag {
			return u, true
		}
	}
	return User{}, false
}

// Search matches term case-insensitively against name, department, position
// and tag. An empty term returns every user.
func (r *Roster) Search(term string) []User {
	all := r.List()
	if term == "" {
		return all
	}
	needle := strings.ToLower(term)
	out := make([]User, 0, len(all))
	for _, u := range all {
		if containsFold(u.Name, needle) || containsFold(u.Department, needle) ||
			containsFold(u.Position, needle) || containsFold(u.RFIDTag, needle) {
			out = append(out, u)
		}
	}
	return out
}

// Add validates in and appends a new user with a generated id.
func (r *Roster) Add(in Input) (User, error) {
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tagTaken(in.RFIDTag, "") {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateTag, in.RFIDTag)
	}
	u := User{ID: uuid.NewString()}
	apply(&u, in)
	r.users = append(r.users, u)
	return u, nil
}

// Update replaces the editable fields of user id.
func (r *Roster) Update(id string, in Input) (User, error) {
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	if r.tagTaken(in.RFIDTag, id) {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateTag, in.RFIDTag)
	}
	apply(&r.users[i], in)
	return r.users[i], nil
}

// SetImage updates only the image reference of user id.
func (r *Roster) SetImage(id, imageURL string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	r.users[i].ImageURL = imageURL
	return r.users[i], nil
}

// Delete removes user id. Attendance records that reference it are left alone.
func (r *Roster) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	r.users = slices.Delete(r.users, i, i+1)
	return nil
}

func (r *Roster) indexOf(id string) int {
	return slices.IndexFunc(r.users, func(u User) bool { return u.ID == id })
}

func (r *Roster) tagTaken(tag, exceptID string) bool {
	for _, u := range r.users {
		if u.RFIDTag == tag && u.ID != exceptID {
			return true
		}
	}
	return false
}

func apply(u *User, in Input) {
	u.Name = in.Name
	u.Department = in.Department
	u.Position = in.Position
	u.RFIDTag = in.RFIDTag
	u.ImageURL = in.ImageURL
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
