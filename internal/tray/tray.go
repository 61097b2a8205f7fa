// Package tray provides a system tray status display for the vision service.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray shows the service state in the system tray. It is a read-only
// status surface with a quit action; all control goes through the HTTP API.
type Tray struct {
	onQuit func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuCamera      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray loop.
// This function blocks until systray.Quit() is called and must run on
// the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady sets up the menu structure once the tray is available.
func (t *Tray) onReady() {
	systray.SetTitle("Drishti")
	systray.SetTooltip("Drishti Vision Service")

	t.menuCamera = systray.AddMenuItem("Camera: unavailable", "Camera state")
	t.menuCamera.Disable()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Drishti")

	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCameraAvailable updates the camera state display in the menu.
func (t *Tray) SetCameraAvailable(available bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuCamera == nil {
		return
	}
	if available {
		t.menuCamera.SetTitle("Camera: active")
	} else {
		t.menuCamera.SetTitle("Camera: unavailable")
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture == nil {
		return
	}
	if name == "" {
		t.menuLastGesture.SetTitle("Last: none")
	} else {
		t.menuLastGesture.SetTitle("Last: " + name)
	}
}
