//go:build unix

package wake

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// notifyWake delivers SIGCONT to ch. The shell sends SIGCONT when a
// stopped job is resumed, which is the closest signal to "the user is
// looking at us again" a terminal process gets.
func notifyWake(ch chan os.Signal) {
	signal.Notify(ch, unix.SIGCONT)
}

func stopWake(ch chan os.Signal) {
	signal.Stop(ch)
}
