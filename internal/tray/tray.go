// Package tray provides an optional system tray menu for the camera server.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onOpen func()
	onSave func() string
	onQuit func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuLastSave *systray.MenuItem
	lastSave     string
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnOpen sets the callback function to be called when the viewer menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnSave sets the callback run by the save menu item. It returns the
// outcome message shown in the menu.
func (t *Tray) OnSave(fn func() string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSave = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PiCam")
	systray.SetTooltip("Pi Camera Stream")

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the live stream in a browser")
	menuSave := systray.AddMenuItem("Save Snapshot", "Save the current frame")
	systray.AddSeparator()

	t.mu.Lock()
	t.menuLastSave = systray.AddMenuItem("Last save: none", "Last saved snapshot")
	t.menuLastSave.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop the camera server")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuSave.ClickedCh:
				t.handleSave()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleOpen handles the viewer menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleSave runs the save callback outside the lock and shows its outcome.
func (t *Tray) handleSave() {
	t.mu.RLock()
	callback := t.onSave
	t.mu.RUnlock()

	if callback == nil {
		return
	}
	t.SetLastSave(callback())
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetLastSave updates the last save display in the menu.
func (t *Tray) SetLastSave(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastSave = message
	if t.menuLastSave != nil {
		if message == "" {
			t.menuLastSave.SetTitle("Last save: none")
		} else {
			t.menuLastSave.SetTitle("Last save: " + message)
		}
	}
}

// LastSave returns the most recent save outcome message.
func (t *Tray) LastSave() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSave
}
