package pipeline

import (
	"context"
	"sync"

	"github.com/google/gopacket"
	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/classify"
)

type Options struct {
	// Window is the size of the recent activity window.
	Window int
	// QueueCap bounds the activity queue. 0 means unbounded.
	QueueCap int
}

// Controller owns the capture loop, the activity queue and the activity
// store, and moves packets from the queue into the store on DrainTick.
type Controller struct {
	logger zerolog.Logger
	loop   *capture.Loop
	queue  *capture.Queue[gopacket.Packet]
	store  *activity.Store

	drainMu sync.Mutex
	skipped uint64
}

func NewController(
	logger zerolog.Logger,
	source capture.Source,
	opts Options,
) *Controller {
	queue := capture.NewQueue[gopacket.Packet](opts.QueueCap)

	return &Controller{
		logger: logger,
		loop:   capture.NewLoop(logger, source, queue),
		queue:  queue,
		store:  activity.NewStore(opts.Window),
	}
}

// Start starts capturing. Calling it while capture is active does nothing.
func (c *Controller) Start(ctx context.Context) bool {
	return c.loop.Start(ctx)
}

// Stop stops capturing and waits for the capture goroutine to exit.
// Packets already queued stay queued until the next DrainTick.
func (c *Controller) Stop() {
	c.loop.Stop()
}

func (c *Controller) State() capture.State {
	return c.loop.State()
}

func (c *Controller) Err() error {
	return c.loop.Err()
}

// DrainTick classifies everything queued since the last call, in capture
// order, and appends the accepted records to the store. It returns the
// number of records appended.
func (c *Controller) DrainTick() int {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	packets := c.queue.DrainAll()

	appended := 0
	for _, p := range packets {
		rec, ok := classify.Classify(p)
		if !ok {
			c.skipped++
			continue
		}

		c.store.Append(rec)
		appended++
	}

	if len(packets) > 0 {
		c.logger.Trace().
			Int("drained", len(packets)).
			Int("appended", appended).
			Msg("drain tick")
	}

	return appended
}

// Skipped returns the number of drained packets that were not IP traffic.
func (c *Controller) Skipped() uint64 {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	return c.skipped
}

func (c *Controller) Store() *activity.Store {
	return c.store
}

// Queued returns the current backlog of the activity queue.
func (c *Controller) Queued() int {
	return c.queue.Len()
}

// Dropped returns the number of packets discarded by a bounded queue.
func (c *Controller) Dropped() uint64 {
	return c.queue.Dropped()
}
