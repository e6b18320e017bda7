package modal

import "strings"

// Surface is the host-rendered overlay the viewer draws on: an outer
// overlay with an inner scrollable content panel. The host supplies a real
// implementation; MemorySurface backs tests and headless runs.
type Surface interface {
	Show()
	Hide()
	Visible() bool
	SetText(text string)
	Text() string
	ScrollToBottom()
}

// MemorySurface is an in-memory Surface. Scroll position is modeled as a
// line offset so tests can assert bottom-of-content.
type MemorySurface struct {
	visible   bool
	text      string
	scrollTop int
}

func NewMemorySurface() Surface {
	return &MemorySurface{}
}

func (s *MemorySurface) Show()         { s.visible = true }
func (s *MemorySurface) Hide()         { s.visible = false }
func (s *MemorySurface) Visible() bool { return s.visible }

func (s *MemorySurface) SetText(text string) { s.text = text }
func (s *MemorySurface) Text() string        { return s.text }

func (s *MemorySurface) ScrollToBottom() {
	s.scrollTop = s.contentHeight()
}

// AtBottom reports whether the content is scrolled to its end.
func (s *MemorySurface) AtBottom() bool {
	return s.scrollTop == s.contentHeight()
}

func (s *MemorySurface) contentHeight() int {
	if s.text == "" {
		return 0
	}

	return len(strings.Split(s.text, "\n"))
}
