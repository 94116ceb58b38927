package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// NodeResult holds the counters of one node at the end of a run.
type NodeResult struct {
	ID        uint32 `json:"id"`
	Addr      string `json:"addr"`
	Sent      uint64 `json:"sent"`
	Received  uint64 `json:"received"`
	Malformed uint64 `json:"malformed"`
	BytesSent uint64 `json:"bytes_sent"`
	Known     int    `json:"known"`
	Completed bool   `json:"completed"`

	// CompletedAt is in seconds of run time, -1 if the node never completed.
	CompletedAt float64 `json:"completed_at"`
}

// Result summarises a run.
type Result struct {
	RunID       string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
	NumNodes    uint32    `json:"num_nodes"`
	LinkQuality string    `json:"link_quality"`
	Seed        int64     `json:"seed"`
	Realtime    bool      `json:"realtime"`
	Transport   string    `json:"transport"`

	// CompletionTime is the time in seconds from the first node start to
	// every node holding every contribution, or -1 if the run ended first.
	CompletionTime float64 `json:"completion_time"`
	AllCompleted   bool    `json:"all_completed"`

	TotalSent     uint64  `json:"total_sent"`
	TotalReceived uint64  `json:"total_received"`
	AvgSent       float64 `json:"avg_sent"`
	AvgReceived   float64 `json:"avg_received"`

	// OverheadRatio is received over sent, 0 when nothing was sent.
	OverheadRatio float64 `json:"overhead_ratio"`

	// SuccessRate is the percentage of nodes whose own row is complete.
	SuccessRate float64 `json:"success_rate"`

	BytesSent uint64 `json:"bytes_sent"`
	Dropped   uint64 `json:"dropped"`

	Nodes []NodeResult `json:"nodes"`
}

func (s *Simulation) result() *Result {
	r := &Result{
		RunID:          s.conf.RunID,
		Timestamp:      time.Now().UTC(),
		NumNodes:       s.conf.NumNodes,
		LinkQuality:    string(s.conf.LinkQuality),
		Seed:           s.conf.Seed,
		Realtime:       s.conf.Realtime,
		CompletionTime: -1,
		AllCompleted:   s.allCompleted,
		Transport:      s.conf.Transport,
	}
	if s.network != nil {
		r.Dropped = s.network.Dropped()
	}
	if s.allCompleted {
		r.CompletionTime = s.completionTime.Seconds()
	}

	successful := 0
	for _, n := range s.nodes {
		m := n.SnapshotMatrix()
		complete := m.RowComplete(n.ID())
		if complete {
			successful++
		}

		completedAt := -1.0
		if at, ok := n.CompletedAt(); ok {
			completedAt = at.Seconds()
		}

		nr := NodeResult{
			ID:          n.ID(),
			Addr:        n.Addr(),
			Sent:        n.SentCount(),
			Received:    n.ReceivedCount(),
			Malformed:   n.MalformedCount(),
			BytesSent:   n.BytesSent(),
			Known:       m.Count(),
			Completed:   complete,
			CompletedAt: completedAt,
		}
		r.Nodes = append(r.Nodes, nr)

		r.TotalSent += nr.Sent
		r.TotalReceived += nr.Received
		r.BytesSent += nr.BytesSent
	}

	n := float64(s.conf.NumNodes)
	r.AvgSent = float64(r.TotalSent) / n
	r.AvgReceived = float64(r.TotalReceived) / n
	if r.TotalSent > 0 {
		r.OverheadRatio = float64(r.TotalReceived) / float64(r.TotalSent)
	}
	r.SuccessRate = float64(successful) / n * 100

	return r
}

func (s *Simulation) logResult(r *Result) {
	s.logger.Info("+--------+-------------+-------------+----------+")
	s.logger.Info("|  node  |    sent     |  received   | complete |")
	s.logger.Info("+--------+-------------+-------------+----------+")
	for _, nr := range r.Nodes {
		s.logger.Info(fmt.Sprintf("| %6d | %11d | %11d | %8t |", nr.ID, nr.Sent, nr.Received, nr.Completed))
	}
	s.logger.Info("+--------+-------------+-------------+----------+")

	s.logger.WithFields(logrus.Fields{
		"total_sent":      r.TotalSent,
		"total_received":  r.TotalReceived,
		"avg_sent":        fmt.Sprintf("%.2f", r.AvgSent),
		"avg_received":    fmt.Sprintf("%.2f", r.AvgReceived),
		"overhead_ratio":  fmt.Sprintf("%.2f", r.OverheadRatio),
		"success_rate":    fmt.Sprintf("%.2f%%", r.SuccessRate),
		"completion_time": r.CompletionTime,
		"bytes_sent":      r.BytesSent,
		"dropped":         r.Dropped,
	}).Info("Simulation result")
}
