//go:build windows

package wake

import "os"

// Windows has no job control signals; wake detection falls back to
// clock drift alone.
func notifyWake(ch chan os.Signal) {}

func stopWake(ch chan os.Signal) {}
