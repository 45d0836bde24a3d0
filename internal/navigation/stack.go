// Package navigation keeps the breadcrumb trail of screens and the typed state each
// screen was opened with.
package navigation

import (
	"strings"
	"sync"
)

// Screen names a storefront screen.
type Screen string

const (
	Home            Screen = "home"
	Menu            Screen = "menu"
	Login           Screen = "login"
	Register        Screen = "register"
	Payment         Screen = "payment"
	Delivery        Screen = "delivery"
	DinerDashboard  Screen = "diner-dashboard"
	FranchiseBoard  Screen = "franchise-dashboard"
	AdminDashboard  Screen = "admin-dashboard"
	Users           Screen = "users"
	CreateFranchise Screen = "create-franchise"
	CreateStore     Screen = "create-store"
	CloseFranchise  Screen = "close-franchise"
	CloseStore      Screen = "close-store"
	DeleteUser      Screen = "delete-user"
)

// DefaultLanding is where PopToParent ends when the trail is exhausted.
const DefaultLanding = Home

// Entry is one visited screen and the payload it was pushed with.
type Entry struct {
	Screen Screen
	State  interface{}
}

// StateOf reads an entry's payload as T. ok is false when the entry carries no
// payload or one of another type.
func StateOf[T any](e Entry) (T, bool) {
	v, ok := e.State.(T)
	return v, ok
}

// Stack is the breadcrumb trail. The bottom entry is always the landing screen.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
}

func NewStack() *Stack {
	return &Stack{entries: []Entry{{Screen: DefaultLanding}}}
}

// Push records screen with its payload on top of the trail.
func (s *Stack) Push(screen Screen, state interface{}) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{Screen: screen, State: state}
	s.entries = append(s.entries, e)
	return e
}

// Replace swaps the current entry, keeping the parent.
func (s *Stack) Replace(screen Screen, state interface{}) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{Screen: screen, State: state}
	if len(s.entries) <= 1 {
		s.entries = append(s.entries, e)
	} else {
		s.entries[len(s.entries)-1] = e
	}
	return e
}

// PopToParent discards the current entry and its state and returns the parent. With
// nothing left to pop it returns the landing screen.
func (s *Stack) PopToParent() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 1 {
		s.entries[len(s.entries)-1] = Entry{}
		s.entries = s.entries[:len(s.entries)-1]
	}
	if len(s.entries) == 0 {
		s.entries = []Entry{{Screen: DefaultLanding}}
	}
	return s.entries[len(s.entries)-1]
}

// Truncate pops entries until depth remain and returns the new current entry. The
// landing entry is never removed.
func (s *Stack) Truncate(depth int) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if depth < 1 {
		depth = 1
	}
	if len(s.entries) == 0 {
		s.entries = []Entry{{Screen: DefaultLanding}}
	}
	for len(s.entries) > depth {
		s.entries[len(s.entries)-1] = Entry{}
		s.entries = s.entries[:len(s.entries)-1]
	}
	return s.entries[len(s.entries)-1]
}

func (s *Stack) Current() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{Screen: DefaultLanding}
	}
	return s.entries[len(s.entries)-1]
}

// Parent returns the entry below the current one, or the landing screen.
func (s *Stack) Parent() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) < 2 {
		return Entry{Screen: DefaultLanding}
	}
	return s.entries[len(s.entries)-2]
}

// Reset drops the whole trail and starts again from screen. Resetting to the landing
// screen leaves a single entry.
func (s *Stack) Reset(screen Screen) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Entry{{Screen: DefaultLanding}}
	if screen != DefaultLanding {
		s.entries = append(s.entries, Entry{Screen: screen})
	}
	return s.entries[len(s.entries)-1]
}

func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Trail returns the visited screens bottom-up.
func (s *Stack) Trail() []Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	trail := make([]Screen, len(s.entries))
	for i, e := range s.entries {
		trail[i] = e.Screen
	}
	return trail
}

// Breadcrumb renders the trail as "home / menu / payment".
func (s *Stack) Breadcrumb() string {
	trail := s.Trail()
	parts := make([]string, len(trail))
	for i, screen := range trail {
		parts[i] = string(screen)
	}
	return strings.Join(parts, " / ")
}
