// Package signalman owns process termination. Components register
// named shutdown handlers, and a SIGTERM runs them all before the
// process exits. SIGUSR1 dumps goroutine stacks for debugging wedged
// workers without killing the process.
package signalman

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"sync"
	"syscall"

	"github.com/alpacahq/gopaca/log"
)

type SignalHandler func() error

var (
	mu       sync.Mutex
	handlers = map[string]SignalHandler{}
	done     = make(chan struct{})
)

// RegisterFunc adds a named handler to run at termination.
func RegisterFunc(name string, f SignalHandler) {
	mu.Lock()
	defer mu.Unlock()
	log.Debug("register graceful termination", "name", name)
	handlers[name] = f
}

// Wait blocks until the termination handlers have all run.
func Wait() {
	<-done
}

func Start() {
	sigC := make(chan os.Signal, 1)

	signal.Notify(sigC, syscall.SIGUSR1, syscall.SIGTERM, os.Interrupt)

	go func() {
		for sig := range sigC {
			switch sig {
			case syscall.SIGUSR1:
				fmt.Println("dumping stack traces due to SIGUSR1 request")
				pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
			case syscall.SIGTERM:
				mu.Lock()
				for name, handler := range handlers {
					if err := handler(); err != nil {
						log.Error("graceful termination failure", "handler", name, "error", err)
					} else {
						log.Debug("gracefully terminated", "handler", name)
					}
				}
				mu.Unlock()
				log.Info("gracefully terminated")
				close(done)
				return
			default:
				log.Info("forcibly terminated")
				os.Exit(1)
			}
		}
	}()
}
