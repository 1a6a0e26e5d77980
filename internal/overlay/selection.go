package overlay

import (
	"sync"

	"github.com/glasspane/preview/internal/shared/id"
)

// Rect is an on-screen bounding box reported by the rendered context.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Selection is the currently selected region and where it sits on screen,
// which the host uses to place a floating formatting control.
type Selection struct {
	Region id.RegionID `json:"regionId"`
	Rect   Rect        `json:"rect"`
}

// SelectionListener is notified on every selection change. sel is nil when
// the selection was cleared.
type SelectionListener func(sel *Selection)

// Selector tracks which tagged region, if any, is selected. A click inside a
// tagged element selects it; a click outside any tagged element clears.
type Selector struct {
	mu       sync.Mutex
	current  *Selection
	listener SelectionListener
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{}
}

// SetListener installs the host-side listener.
func (s *Selector) SetListener(fn SelectionListener) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Select records region as selected at rect and relays it to the listener.
func (s *Selector) Select(region id.RegionID, rect Rect) {
	sel := &Selection{Region: region, Rect: rect}
	s.mu.Lock()
	s.current = sel
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(sel)
	}
}

// Clear drops the selection and relays the clear to the listener.
func (s *Selector) Clear() {
	s.mu.Lock()
	cleared := s.current != nil
	s.current = nil
	fn := s.listener
	s.mu.Unlock()
	if cleared && fn != nil {
		fn(nil)
	}
}

// Current returns the selection, or nil when nothing is selected.
func (s *Selector) Current() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
