package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/gopacket"
	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/logging"
	"github.com/xvzc/lanwatch/internal/packet"
	"github.com/xvzc/lanwatch/internal/session"
)

// Source yields captured packets. NextPacket must return within a short
// bounded wait; packet.ErrReadTimeout means nothing arrived in time.
type Source interface {
	NextPacket() (gopacket.Packet, error)
}

type State int

const (
	StateIdle State = iota
	StateRunning
	// StateStopping means a stop was requested and the loop has not
	// observed it yet.
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Loop reads packets from a Source on its own goroutine and pushes them to
// a Queue. At most one goroutine is active per Loop.
type Loop struct {
	logger zerolog.Logger
	source Source
	queue  *Queue[gopacket.Packet]

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
	err   error
}

func NewLoop(
	logger zerolog.Logger,
	source Source,
	queue *Queue[gopacket.Packet],
) *Loop {
	return &Loop{
		logger: logger,
		source: source,
		queue:  queue,
	}
}

// Start launches the capture goroutine. It is a no-op unless the loop is
// idle, and reports whether a goroutine was started.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateIdle {
		return false
	}

	l.state = StateRunning
	l.err = nil
	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	go l.run(session.WithNewTraceID(ctx), l.stop, l.done)

	return true
}

// Stop requests the loop to exit and blocks until it did. No packet is read
// after Stop returns. It is a no-op when the loop is idle.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state == StateIdle {
		l.mu.Unlock()
		return
	}

	if l.state == StateRunning {
		l.state = StateStopping
		close(l.stop)
	}
	done := l.done
	l.mu.Unlock()

	<-done
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Err returns the error that terminated the last run, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.err
}

func (l *Loop) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	logger := logging.WithLocalScope(ctx, l.logger, "loop")
	logger.Debug().Msg("capture started")

	var err error
	defer func() {
		l.mu.Lock()
		l.state = StateIdle
		l.err = err
		l.mu.Unlock()

		close(done)
	}()

	var captured uint64
	for {
		select {
		case <-stop:
			logger.Debug().Uint64("captured", captured).Msg("capture stopped")
			return
		case <-ctx.Done():
			logger.Debug().Uint64("captured", captured).Msg("capture cancelled")
			return
		default:
		}

		p, readErr := l.source.NextPacket()
		if readErr != nil {
			if errors.Is(readErr, packet.ErrReadTimeout) {
				continue
			}

			err = fmt.Errorf("capture source failed: %w", readErr)
			logging.ErrorUnwrapped(&logger, "capture aborted", err)
			return
		}

		if p == nil {
			continue
		}

		l.queue.Push(p)
		captured++
	}
}
