// Package modal implements the shared transcript viewer: one process-wide
// overlay that any node can open. Exactly one transcript is visible at a
// time; opening for a second node fully replaces the first node's text.
package modal

import (
	"sync"

	"github.com/chatoptimize/chatgraph/pkg/runloop"
)

// Viewer is the modal history viewer. It is created lazily on first use and
// never destroyed; Close only hides the overlay.
type Viewer struct {
	loop    *runloop.Loop
	surface Surface
}

var (
	mu     sync.Mutex
	shared *Viewer
)

// Shared returns the process-wide viewer, building it on first call. Later
// calls reuse the existing instance and ignore their arguments. The escape
// listener is attached once here, for the life of the process.
func Shared(loop *runloop.Loop, build func() Surface) *Viewer {
	mu.Lock()
	defer mu.Unlock()

	if shared == nil {
		shared = &Viewer{loop: loop, surface: build()}
		loop.OnKey(shared.handleKey)
	}

	return shared
}

// Reset discards the shared viewer so the next Shared call rebuilds it.
// Only tests call this; the process-lifetime key listener on the old loop
// is left behind.
func Reset() {
	mu.Lock()
	shared = nil
	mu.Unlock()
}

// Open replaces the content with text, shows the overlay, and schedules a
// scroll to the bottom on the next tick so layout can settle first.
func (v *Viewer) Open(text string) {
	v.surface.SetText(text)
	v.surface.Show()
	v.loop.NextTick(v.surface.ScrollToBottom)
}

// Close hides the overlay without destroying it. Clicking outside the inner
// panel and the explicit close control both route here.
func (v *Viewer) Close() {
	v.surface.Hide()
}

// IsOpen reports current visibility.
func (v *Viewer) IsOpen() bool {
	return v.surface.Visible()
}

// Surface exposes the underlying overlay, mainly for assertions.
func (v *Viewer) Surface() Surface {
	return v.surface
}

func (v *Viewer) handleKey(k runloop.Key) {
	if k == runloop.KeyEscape && v.IsOpen() {
		v.Close()
	}
}
