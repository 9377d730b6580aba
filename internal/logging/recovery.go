package logging

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Recover is a defer-able recovery that logs panics with a stack trace.
func Recover(component string) {
	if rec := recover(); rec != nil {
		emit(Event{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     LevelError,
			Component: component,
			Event:     "panic_recovered",
			Error:     fmt.Sprintf("%v", rec),
			Extra: map[string]interface{}{
				"stack": string(debug.Stack()),
			},
		})
	}
}

// SafeGo launches a goroutine with panic recovery.
func SafeGo(component string, fn func()) {
	go func() {
		defer Recover(component)
		fn()
	}()
}
