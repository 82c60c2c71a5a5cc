package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown returns a channel that receives termination signals
// delivered to the process. With no arguments it watches SIGINT and
// SIGTERM, the signals a terminal or a service manager sends to stop
// the server.
func WaitForShutdown(signals ...os.Signal) <-chan os.Signal {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)
	return sigChan
}
