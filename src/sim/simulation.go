package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicnetworks/regka/src/net"
	"github.com/mosaicnetworks/regka/src/node"
	"github.com/mosaicnetworks/regka/src/sched"
	"github.com/sirupsen/logrus"
)

// Completion is polled every fastPoll until slowPollAfter, then every
// slowPoll.
const (
	firstPoll     = time.Millisecond
	fastPoll      = 10 * time.Millisecond
	slowPoll      = 100 * time.Millisecond
	slowPollAfter = 2 * time.Second
)

// Simulation wires N nodes to an in-memory channel and runs them until every
// node holds every contribution or the time bound is reached.
type Simulation struct {
	conf   *Config
	logger *logrus.Entry

	scheduler sched.Scheduler
	simulator *sched.Simulator
	loop      *sched.EventLoop

	network *net.InmemNetwork
	nodes   []*node.Node

	ctx context.Context

	allCompleted   bool
	completionTime time.Duration
}

// NodeAddr returns the address of node i.
func NodeAddr(i int) string {
	return fmt.Sprintf("10.1.1.%d", i+1)
}

// New builds the nodes and the channel of a run. Nothing runs until Run.
func New(conf *Config) (*Simulation, error) {
	if conf.NumNodes == 0 {
		return nil, fmt.Errorf("number of nodes must be positive")
	}
	if conf.RunID == "" {
		conf.RunID = uuid.New().String()
	}

	nodeConf := conf.Node
	nodeConf.NumNodes = conf.NumNodes
	if nodeConf.Logger == nil {
		nodeConf.Logger = logrus.New()
	}

	s := &Simulation{
		conf: conf,
		logger: nodeConf.Logger.WithFields(logrus.Fields{
			"prefix": "sim",
			"run_id": conf.RunID,
		}),
	}

	switch conf.Transport {
	case "", InmemTransport:
	case UDPTransport:
		if !net.FitsDatagram(conf.NumNodes) {
			return nil, fmt.Errorf("%d nodes do not fit in a UDP datagram", conf.NumNodes)
		}
		conf.Realtime = true
	default:
		return nil, fmt.Errorf("unknown transport %q (inmem, udp)", conf.Transport)
	}

	if conf.Realtime {
		s.loop = sched.NewEventLoop()
		s.scheduler = s.loop
	} else {
		s.simulator = sched.NewSimulator()
		s.scheduler = s.simulator
	}

	trans, err := s.transports()
	if err != nil {
		return nil, err
	}

	s.nodes = make([]*node.Node, conf.NumNodes)
	for i := range s.nodes {
		source := rand.New(rand.NewSource(conf.Seed + int64(i) + 1))
		n, err := node.NewNode(&nodeConf, uint32(i), trans[i], s.scheduler, source, conf.Metrics)
		if err != nil {
			closeAll(trans)
			return nil, err
		}
		s.nodes[i] = n
	}

	return s, nil
}

func (s *Simulation) transports() ([]net.Transport, error) {
	trans := make([]net.Transport, 0, s.conf.NumNodes)

	if s.conf.Transport != UDPTransport {
		s.network = net.NewInmemNetwork(s.scheduler, s.conf.LinkQuality.Channel(), s.conf.Seed, s.logger)
		for i := 0; i < int(s.conf.NumNodes); i++ {
			t, err := s.network.Attach(NodeAddr(i))
			if err != nil {
				return nil, err
			}
			trans = append(trans, t)
		}
		return trans, nil
	}

	var udp []*net.UDPTransport
	var addrs []string
	for i := 0; i < int(s.conf.NumNodes); i++ {
		port := 0
		if s.conf.BasePort > 0 {
			port = s.conf.BasePort + i
		}
		t, err := net.NewUDPTransport(fmt.Sprintf("127.0.0.1:%d", port), s.scheduler, s.logger)
		if err != nil {
			closeAll(trans)
			return nil, err
		}
		udp = append(udp, t)
		trans = append(trans, t)
		addrs = append(addrs, t.LocalAddr())
	}
	for _, t := range udp {
		if err := t.SetPeers(addrs); err != nil {
			closeAll(trans)
			return nil, err
		}
	}
	return trans, nil
}

func closeAll(trans []net.Transport) {
	for _, t := range trans {
		t.Close()
	}
}

// Nodes returns the nodes of the run.
func (s *Simulation) Nodes() []*node.Node {
	return s.nodes
}

// Network returns the in-memory channel of the run, nil over UDP.
func (s *Simulation) Network() *net.InmemNetwork {
	return s.network
}

// AllNodesCompleted reports whether every node holds every contribution.
func (s *Simulation) AllNodesCompleted() bool {
	for _, n := range s.nodes {
		if !n.IsCompleted() {
			return false
		}
	}
	return true
}

// Run executes the run and collects its result. In realtime mode it blocks
// for up to SimTime of wall-clock time; cancelling ctx ends the run early.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	s.logger.WithFields(logrus.Fields{
		"nodes":        s.conf.NumNodes,
		"link_quality": s.conf.LinkQuality,
		"seed":         s.conf.Seed,
		"sim_time":     s.conf.SimTime,
		"realtime":     s.conf.Realtime,
	}).Info("Starting simulation")

	s.ctx = ctx

	for i, n := range s.nodes {
		n := n
		s.scheduler.ScheduleAfter(s.conf.StartTime+time.Duration(i)*s.conf.StartSpacing, func() {
			if err := n.Start(); err != nil {
				s.logger.WithError(err).WithField("node", n.ID()).Error("Starting node")
			}
		})
	}
	s.scheduler.ScheduleAfter(firstPoll, s.checkCompletion)

	if s.conf.Realtime {
		runCtx, cancel := context.WithTimeout(ctx, s.conf.SimTime)
		s.loop.Run(runCtx)
		cancel()
		s.loop.Shutdown()
	} else {
		stopCh := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.simulator.Stop()
			case <-stopCh:
			}
		}()
		s.simulator.Run(s.conf.SimTime)
		close(stopCh)
	}

	for _, n := range s.nodes {
		if err := n.Stop(); err != nil {
			s.logger.WithError(err).WithField("node", n.ID()).Warn("Stopping node")
		}
	}

	result := s.result()
	s.logResult(result)

	return result, ctx.Err()
}

func (s *Simulation) checkCompletion() {
	now := s.scheduler.Now()

	if err := s.ctx.Err(); err != nil {
		s.logger.WithError(err).WithField("at", now).Warn("Simulation cancelled")
		s.stop()
		return
	}

	if s.AllNodesCompleted() {
		s.allCompleted = true
		s.completionTime = now - s.conf.StartTime
		s.logger.WithField("at", now).Info("Every node collected every contribution, ending simulation")
		s.stop()
		return
	}

	if now < slowPollAfter {
		s.scheduler.ScheduleAfter(fastPoll, s.checkCompletion)
	} else {
		s.scheduler.ScheduleAfter(slowPoll, s.checkCompletion)
	}
}

func (s *Simulation) stop() {
	if s.conf.Realtime {
		s.loop.Shutdown()
		return
	}
	s.simulator.Stop()
}
