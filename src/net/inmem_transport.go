package net

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/mosaicnetworks/regka/src/sched"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ErrTransportShutdown is returned when sending on a closed transport.
var ErrTransportShutdown = errors.New("transport shutdown")

// ChannelModel describes the links of an InmemNetwork. Every delivery is
// delayed by Latency plus a uniform draw in [0, Jitter), and dropped with
// probability LossRate.
type ChannelModel struct {
	Latency  time.Duration
	Jitter   time.Duration
	LossRate float64
}

// InmemNetwork is a fully connected broadcast medium shared by InmemTransports.
// Deliveries are scheduled on a sched.Scheduler, so a network driven by a
// sched.Simulator is deterministic for a given seed.
type InmemNetwork struct {
	sync.RWMutex
	scheduler  sched.Scheduler
	model      ChannelModel
	rand       *rand.Rand
	transports map[string]*InmemTransport
	logger     *logrus.Entry

	sent      *atomic.Uint64
	delivered *atomic.Uint64
	dropped   *atomic.Uint64
	bytes     *atomic.Uint64
}

// NewInmemNetwork ...
func NewInmemNetwork(scheduler sched.Scheduler, model ChannelModel, seed int64, logger *logrus.Entry) *InmemNetwork {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &InmemNetwork{
		scheduler:  scheduler,
		model:      model,
		rand:       rand.New(rand.NewSource(seed)),
		transports: make(map[string]*InmemTransport),
		logger:     logger,
		sent:       atomic.NewUint64(0),
		delivered:  atomic.NewUint64(0),
		dropped:    atomic.NewUint64(0),
		bytes:      atomic.NewUint64(0),
	}
}

// Attach creates the transport of a node listening on addr.
func (nw *InmemNetwork) Attach(addr string) (*InmemTransport, error) {
	nw.Lock()
	defer nw.Unlock()

	if addr == BroadcastAddr {
		return nil, fmt.Errorf("cannot attach to broadcast address")
	}
	if _, ok := nw.transports[addr]; ok {
		return nil, fmt.Errorf("address already attached: %s", addr)
	}

	trans := &InmemTransport{
		network:   nw,
		localAddr: addr,
		shutdown:  atomic.NewBool(false),
	}
	nw.transports[addr] = trans
	return trans, nil
}

// Detach removes the route to addr.
func (nw *InmemNetwork) Detach(addr string) {
	nw.Lock()
	defer nw.Unlock()
	delete(nw.transports, addr)
}

// Sent returns the number of datagrams handed to the network. A broadcast
// counts once per potential receiver.
func (nw *InmemNetwork) Sent() uint64 {
	return nw.sent.Load()
}

// Delivered returns the number of datagrams handed to a receiver.
func (nw *InmemNetwork) Delivered() uint64 {
	return nw.delivered.Load()
}

// Dropped returns the number of datagrams lost on the channel or addressed to
// a closed transport.
func (nw *InmemNetwork) Dropped() uint64 {
	return nw.dropped.Load()
}

// BytesSent returns the total payload size sent, counting each broadcast once.
func (nw *InmemNetwork) BytesSent() uint64 {
	return nw.bytes.Load()
}

func (nw *InmemNetwork) send(from, target string, payload []byte) error {
	nw.RLock()
	var targets []*InmemTransport
	if target == BroadcastAddr {
		for addr, t := range nw.transports {
			if addr != from {
				targets = append(targets, t)
			}
		}
	} else if t, ok := nw.transports[target]; ok {
		targets = append(targets, t)
	}
	nw.RUnlock()

	// map order is random; sort to keep seeded runs reproducible
	sort.Slice(targets, func(a, b int) bool {
		return targets[a].localAddr < targets[b].localAddr
	})

	if len(targets) == 0 && target != BroadcastAddr {
		return fmt.Errorf("failed to connect to peer: %v", target)
	}

	nw.bytes.Add(uint64(len(payload)))

	for _, t := range targets {
		nw.sent.Inc()

		delay, lost := nw.draw()
		if lost {
			nw.dropped.Inc()
			continue
		}

		data := make([]byte, len(payload))
		copy(data, payload)
		receiver := t

		nw.scheduler.ScheduleAfter(delay, func() {
			if !receiver.deliver(data, from) {
				nw.dropped.Inc()
				return
			}
			nw.delivered.Inc()
		})
	}

	return nil
}

func (nw *InmemNetwork) draw() (time.Duration, bool) {
	nw.Lock()
	defer nw.Unlock()

	if nw.model.LossRate > 0 && nw.rand.Float64() < nw.model.LossRate {
		return 0, true
	}
	delay := nw.model.Latency
	if nw.model.Jitter > 0 {
		delay += time.Duration(nw.rand.Int63n(int64(nw.model.Jitter)))
	}
	return delay, false
}

// InmemTransport implements the Transport interface, to allow nodes to be
// simulated in-memory without going over a network.
type InmemTransport struct {
	sync.RWMutex
	network   *InmemNetwork
	localAddr string
	handler   Handler
	shutdown  *atomic.Bool
}

// Listen implements the Transport interface.
func (i *InmemTransport) Listen(handler Handler) {
	i.Lock()
	defer i.Unlock()
	i.handler = handler
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Send implements the Transport interface.
func (i *InmemTransport) Send(target string, payload []byte) error {
	if i.shutdown.Load() {
		return ErrTransportShutdown
	}
	return i.network.send(i.localAddr, target, payload)
}

func (i *InmemTransport) deliver(payload []byte, from string) bool {
	if i.shutdown.Load() {
		return false
	}

	i.RLock()
	handler := i.handler
	i.RUnlock()

	if handler == nil {
		i.network.logger.WithField("addr", i.localAddr).Debug("No handler, dropping payload")
		return false
	}
	handler(payload, from)
	return true
}

// Close is used to permanently disable the transport
func (i *InmemTransport) Close() error {
	if i.shutdown.CompareAndSwap(false, true) {
		i.network.Detach(i.localAddr)
	}
	return nil
}
