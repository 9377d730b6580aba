// Package notify delivers fire-and-forget completion signals. Delivery
// failure never affects the state machine; errors are logged and dropped.
package notify

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"flowtrack/internal/logging"
)

// Notifier receives timer lifecycle signals.
type Notifier interface {
	// SessionDone fires when a countdown or session completes.
	SessionDone(category string, focused time.Duration)
	// BreakOver fires when a break allowance runs out.
	BreakOver(category string)
}

// Desktop sends best-effort desktop notifications plus a terminal bell.
type Desktop struct {
	log *logging.Logger
	// Bell writes \a to stderr when true.
	Bell bool
}

var _ Notifier = (*Desktop)(nil)

// NewDesktop creates the platform notifier.
func NewDesktop() *Desktop {
	return &Desktop{log: logging.New("notify"), Bell: true}
}

func (d *Desktop) SessionDone(category string, focused time.Duration) {
	d.send("Session complete", fmt.Sprintf("%s: %s focused", category, focused.Round(time.Second)))
}

func (d *Desktop) BreakOver(category string) {
	d.send("Break over", fmt.Sprintf("%s: back to work", category))
}

func (d *Desktop) send(title, body string) {
	if d.Bell {
		fmt.Fprint(os.Stderr, "\a")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", "--app-name=flowtrack", title, body)
	default:
		return
	}

	logging.SafeGo("notify", func() {
		if err := cmd.Run(); err != nil {
			d.log.Debug("notification skipped", map[string]interface{}{"error": err.Error()})
		}
	})
}

// Noop discards all signals. Used in tests and when notifications are off.
type Noop struct{}

var _ Notifier = Noop{}

func (Noop) SessionDone(string, time.Duration) {}
func (Noop) BreakOver(string)                  {}
