package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvzc/lanwatch/internal/packet"
)

// chanSource hands out packets sent on ch and times out after wait.
type chanSource struct {
	ch    chan gopacket.Packet
	wait  time.Duration
	reads atomic.Int64
	err   error
}

func newChanSource() *chanSource {
	return &chanSource{
		ch:   make(chan gopacket.Packet, 64),
		wait: 5 * time.Millisecond,
	}
}

func (s *chanSource) NextPacket() (gopacket.Packet, error) {
	s.reads.Add(1)
	if s.err != nil {
		return nil, s.err
	}

	select {
	case p := <-s.ch:
		return p, nil
	case <-time.After(s.wait):
		return nil, packet.ErrReadTimeout
	}
}

func dummyPacket(i byte) gopacket.Packet {
	return gopacket.NewPacket([]byte{i}, layers.LayerTypeEthernet, gopacket.Default)
}

func TestLoopStopBeforeStart(t *testing.T) {
	l := NewLoop(zerolog.Nop(), newChanSource(), NewQueue[gopacket.Packet](0))

	returned := make(chan struct{})
	go func() {
		l.Stop()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an idle loop")
	}
	assert.Equal(t, StateIdle, l.State())
}

func TestLoopStartTwice(t *testing.T) {
	src := newChanSource()
	q := NewQueue[gopacket.Packet](0)
	l := NewLoop(zerolog.Nop(), src, q)

	assert.True(t, l.Start(context.Background()))
	assert.False(t, l.Start(context.Background()))
	assert.Equal(t, StateRunning, l.State())

	for i := range 10 {
		src.ch <- dummyPacket(byte(i))
	}

	require.Eventually(t, func() bool { return q.Len() == 10 }, time.Second, time.Millisecond)
	l.Stop()

	got := q.DrainAll()
	require.Len(t, got, 10)
	for i, p := range got {
		assert.Equal(t, []byte{byte(i)}, p.Data())
	}
	assert.Equal(t, StateIdle, l.State())
}

func TestLoopNoReadAfterStop(t *testing.T) {
	src := newChanSource()
	l := NewLoop(zerolog.Nop(), src, NewQueue[gopacket.Packet](0))

	l.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	l.Stop()

	reads := src.reads.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, reads, src.reads.Load())
	assert.NoError(t, l.Err())
}

func TestLoopSourceError(t *testing.T) {
	src := newChanSource()
	src.err = errors.New("interface down")
	l := NewLoop(zerolog.Nop(), src, NewQueue[gopacket.Packet](0))

	l.Start(context.Background())
	require.Eventually(t, func() bool { return l.State() == StateIdle }, time.Second, time.Millisecond)

	assert.ErrorIs(t, l.Err(), src.err)
	l.Stop()

	// the loop can be started again once the source recovers
	src.err = nil
	assert.True(t, l.Start(context.Background()))
	assert.NoError(t, l.Err())
	l.Stop()
}

func TestLoopContextCancel(t *testing.T) {
	l := NewLoop(zerolog.Nop(), newChanSource(), NewQueue[gopacket.Packet](0))

	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()

	require.Eventually(t, func() bool { return l.State() == StateIdle }, time.Second, time.Millisecond)
	assert.NoError(t, l.Err())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
}
