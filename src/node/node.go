package node

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mosaicnetworks/regka/src/matrix"
	"github.com/mosaicnetworks/regka/src/net"
	"github.com/mosaicnetworks/regka/src/peers"
	"github.com/mosaicnetworks/regka/src/policy"
	"github.com/mosaicnetworks/regka/src/sched"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Node defines a key agreement participant
type Node struct {
	state

	conf   *Config
	logger *logrus.Entry

	id        uint32
	trans     net.Transport
	scheduler sched.Scheduler
	policy    *policy.Policy
	metrics   *Metrics

	// mu serialises access to the matrix, the neighbour set and the timers.
	mu        sync.Mutex
	matrix    *matrix.Matrix
	neighbors *peers.NeighborSet

	announceTimer sched.Handle
	periodicTimer sched.Handle
	pendingSends  map[uint64]sched.Handle
	nextSend      uint64

	startedAt   time.Duration
	sent        *atomic.Uint64
	received    *atomic.Uint64
	malformed   *atomic.Uint64
	bytesSent   *atomic.Uint64
	completed   *atomic.Bool
	completedAt *atomic.Duration
}

// NewNode is a factory method that returns a Node instance. The node listens
// on trans straight away, so it can take part in the exchange before it is
// started. metrics may be nil.
func NewNode(conf *Config,
	id uint32,
	trans net.Transport,
	scheduler sched.Scheduler,
	source policy.Source,
	metrics *Metrics,
) (*Node, error) {
	m, err := matrix.New(conf.NumNodes, id)
	if err != nil {
		return nil, err
	}

	if metrics == nil {
		metrics = NewMetrics()
	}

	logger := conf.Logger
	if logger == nil {
		logger = logrus.New()
	}

	pol := policy.New(source)
	pol.Floor = conf.ForwardFloor

	node := &Node{
		conf: conf,
		logger: logger.WithFields(logrus.Fields{
			"this_id": id,
			"addr":    trans.LocalAddr(),
		}),
		id:           id,
		trans:        trans,
		scheduler:    scheduler,
		policy:       pol,
		metrics:      metrics,
		matrix:       m,
		neighbors:    peers.NewNeighborSet(conf.NumNodes),
		pendingSends: make(map[uint64]sched.Handle),
		sent:         atomic.NewUint64(0),
		received:     atomic.NewUint64(0),
		malformed:    atomic.NewUint64(0),
		bytesSent:    atomic.NewUint64(0),
		completed:    atomic.NewBool(false),
		completedAt:  atomic.NewDuration(0),
	}

	trans.Listen(node.OnReceive)

	return node, nil
}

// ID returns the node's index in the matrix.
func (n *Node) ID() uint32 {
	return n.id
}

// Addr returns the node's network address.
func (n *Node) Addr() string {
	return n.trans.LocalAddr()
}

// State returns the current state.
func (n *Node) State() State {
	return n.getState()
}

// Start schedules the announce and the periodic broadcast.
func (n *Node) Start() error {
	if !n.casState(Idle, Announcing) {
		return fmt.Errorf("cannot start node in state %s", n.getState())
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.startedAt = n.scheduler.Now()
	n.logger.WithField("at", n.startedAt).Debug("Start")

	// a single-node run is complete from the outset
	n.checkCompleted()

	n.announceTimer = n.scheduler.ScheduleAfter(n.conf.AnnounceDelay, n.announce)
	n.periodicTimer = n.scheduler.ScheduleAfter(n.conf.PeriodicStart, n.periodicBroadcast)

	return nil
}

// Stop cancels every pending timer and transmission, and closes the
// transport. Inbound messages are ignored afterwards.
func (n *Node) Stop() error {
	if n.getState() == Shutdown {
		return nil
	}
	n.setState(Shutdown)

	n.mu.Lock()
	if n.announceTimer != nil {
		n.announceTimer.Cancel()
	}
	if n.periodicTimer != nil {
		n.periodicTimer.Cancel()
	}
	for k, h := range n.pendingSends {
		h.Cancel()
		delete(n.pendingSends, k)
	}
	n.mu.Unlock()

	n.logStats()

	return n.trans.Close()
}

func (n *Node) announce() {
	if n.getState() == Shutdown {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.logger.Debug("Announce")
	n.send(net.BroadcastAddr, []uint32{n.id})
}

func (n *Node) periodicBroadcast() {
	if n.getState() == Shutdown {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.matrix.MatrixComplete() {
		if n.casState(SteadyState, Converged) || n.casState(Announcing, Converged) {
			n.logger.Info("Matrix complete, stopping periodic broadcast")
		}
		return
	}
	n.casState(Announcing, SteadyState)

	row, _ := n.matrix.Row(n.id)
	n.send(net.BroadcastAddr, policy.Set(row))

	n.periodicTimer = n.scheduler.ScheduleAfter(n.conf.PeriodicInterval, n.periodicBroadcast)
}

// OnReceive processes one inbound payload: it records the sender as a
// neighbour, accepts the contributions the sender signalled, merges the
// sender's matrix and relays to every neighbour the policy selects a
// non-empty forward set for. A
// payload that does not decode is dropped without touching the node's state.
// Payloads are processed even before Start.
func (n *Node) OnReceive(payload []byte, from string) {
	if n.getState() == Shutdown {
		return
	}

	msg, err := net.Decode(payload, n.conf.NumNodes)
	if err != nil {
		n.malformed.Inc()
		n.metrics.MessagesMalformed.Inc()
		n.logger.WithError(err).WithField("from", from).Warn("Dropping malformed message")
		return
	}

	if msg.SenderID == n.id {
		n.logger.WithField("from", from).Debug("Ignoring message carrying our own id")
		return
	}

	n.received.Inc()
	n.metrics.MessagesReceived.Inc()

	n.mu.Lock()
	defer n.mu.Unlock()

	sender := peers.NewPeer(msg.SenderID, from)
	n.neighbors.Touch(sender)

	for _, j := range policy.Set(msg.ForwardMask) {
		n.matrix.AcceptContribution(j)
	}

	if err := n.matrix.Merge(msg.Matrix); err != nil {
		n.logger.WithError(err).Error("Merging matrix")
		return
	}

	n.checkCompleted()

	// Once every row is known a mop-up relay carries nothing new to a peer
	// whose snapshot is also complete. Relaying those would echo between
	// converged nodes indefinitely.
	if n.matrix.MatrixComplete() && msg.Matrix.MatrixComplete() {
		return
	}

	n.relay(n.neighbors.Peers())
}

// checkCompleted latches completion the first time our own row is full.
// Callers hold mu.
func (n *Node) checkCompleted() {
	if !n.matrix.RowComplete(n.id) {
		return
	}
	if !n.completed.CompareAndSwap(false, true) {
		return
	}

	now := n.scheduler.Now()
	n.completedAt.Store(now)
	elapsed := now - n.startedAt
	if elapsed < 0 {
		elapsed = 0
	}

	n.metrics.CompletedNodes.Inc()
	n.metrics.CompletionSeconds.Observe(elapsed.Seconds())

	n.logger.WithFields(logrus.Fields{
		"at":      now,
		"elapsed": elapsed,
	}).Info("Collected every contribution")
}

// relay sends each target the contributions the policy selects for it.
// Callers hold mu.
func (n *Node) relay(targets []peers.Peer) {
	mode := "biased"
	if n.matrix.MatrixComplete() {
		mode = "mopup"
	}

	for _, p := range targets {
		set, err := n.policy.SelectForwardSet(n.matrix, n.id, p.ID)
		if err != nil {
			n.logger.WithError(err).WithField("peer", p.String()).Error("Selecting forward set")
			continue
		}
		if len(set) == 0 {
			continue
		}

		n.logger.WithFields(logrus.Fields{
			"peer": p.String(),
			"set":  set,
			"mode": mode,
		}).Debug("Relay")

		n.metrics.Relays.WithLabelValues(mode).Inc()
		n.send(p.NetAddr, set)
	}
}

// send encodes the current matrix with the given forward set and transmits it
// after SendDelay. Callers hold mu.
func (n *Node) send(target string, set []uint32) {
	payload, err := net.Encode(n.id, set, n.matrix)
	if err != nil {
		n.logger.WithError(err).Error("Encoding message")
		return
	}

	key := n.nextSend
	n.nextSend++

	n.pendingSends[key] = n.scheduler.ScheduleAfter(n.conf.SendDelay, func() {
		n.mu.Lock()
		delete(n.pendingSends, key)
		n.mu.Unlock()

		if n.getState() == Shutdown {
			return
		}

		if err := n.trans.Send(target, payload); err != nil {
			n.logger.WithError(err).WithField("target", target).Warn("Sending message")
			return
		}

		n.sent.Inc()
		n.bytesSent.Add(uint64(len(payload)))
		n.metrics.MessagesSent.Inc()
		n.metrics.BytesSent.Add(float64(len(payload)))
	})
}

// IsCompleted reports whether the node holds every contribution. Once true
// it stays true.
func (n *Node) IsCompleted() bool {
	return n.completed.Load()
}

// CompletedAt returns the scheduler time at which the node completed, and
// false if it has not.
func (n *Node) CompletedAt() (time.Duration, bool) {
	if !n.completed.Load() {
		return 0, false
	}
	return n.completedAt.Load(), true
}

// SentCount returns the number of transmissions.
func (n *Node) SentCount() uint64 {
	return n.sent.Load()
}

// ReceivedCount returns the number of decoded inbound messages.
func (n *Node) ReceivedCount() uint64 {
	return n.received.Load()
}

// MalformedCount returns the number of dropped inbound payloads.
func (n *Node) MalformedCount() uint64 {
	return n.malformed.Load()
}

// BytesSent returns the total size of the payloads sent.
func (n *Node) BytesSent() uint64 {
	return n.bytesSent.Load()
}

// SnapshotMatrix returns a copy of the knowledge matrix.
func (n *Node) SnapshotMatrix() *matrix.Matrix {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.matrix.Clone()
}

// Neighbors returns the current neighbour set, oldest first.
func (n *Node) Neighbors() []peers.Peer {
	return n.neighbors.Peers()
}

// GetStats returns a map of statistics about the node.
func (n *Node) GetStats() map[string]string {
	n.mu.Lock()
	known := n.matrix.Count()
	n.mu.Unlock()

	completedAt := "nil"
	if at, ok := n.CompletedAt(); ok {
		completedAt = at.String()
	}

	s := map[string]string{
		"id":           strconv.FormatUint(uint64(n.id), 10),
		"addr":         n.Addr(),
		"state":        n.getState().String(),
		"sent":         strconv.FormatUint(n.SentCount(), 10),
		"received":     strconv.FormatUint(n.ReceivedCount(), 10),
		"malformed":    strconv.FormatUint(n.MalformedCount(), 10),
		"bytes_sent":   strconv.FormatUint(n.BytesSent(), 10),
		"num_peers":    strconv.Itoa(n.neighbors.Len()),
		"known":        strconv.Itoa(known),
		"completed":    strconv.FormatBool(n.IsCompleted()),
		"completed_at": completedAt,
	}
	return s
}

func (n *Node) logStats() {
	stats := n.GetStats()

	n.logger.WithFields(logrus.Fields{
		"state":        stats["state"],
		"sent":         stats["sent"],
		"received":     stats["received"],
		"malformed":    stats["malformed"],
		"bytes_sent":   stats["bytes_sent"],
		"num_peers":    stats["num_peers"],
		"known":        stats["known"],
		"completed":    stats["completed"],
		"completed_at": stats["completed_at"],
	}).Debug("Stats")
}
