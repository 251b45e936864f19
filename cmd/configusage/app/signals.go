package app

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
)

// exitCodeInterrupted is the conventional status for a process killed by SIGINT
const exitCodeInterrupted = 130

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// setupSignalHandling cancels the run on the first SIGINT or SIGTERM and
// exits on the second
func (a *App) setupSignalHandling() {
	signal.Notify(a.signals, syscall.SIGINT, syscall.SIGTERM)
	go a.handleSignals(&signalState{})
}

func (a *App) stopSignalHandling() {
	signal.Stop(a.signals)
}

func (a *App) handleSignals(state *signalState) {
	for {
		select {
		case <-a.done:
			return
		case sig := <-a.signals:
			a.log.WithFields(logger.Fields{
				"signal": sig.String(),
			}).Debug("Received system signal")

			if !state.shutdownInitiated.CompareAndSwap(false, true) {
				a.log.Warn("Received second interrupt, exiting immediately")
				a.progress.Stop()
				a.exit(exitCodeInterrupted)
				return
			}

			a.log.Info("Interrupt received, cancelling scan")
			a.cancel()
		}
	}
}
