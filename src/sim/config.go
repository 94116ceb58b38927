package sim

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/node"
	"github.com/sirupsen/logrus"
)

// Default run parameters.
const (
	DefaultNumNodes     = 10
	DefaultLinkQuality  = Medium
	DefaultSimTime      = 60 * time.Second
	DefaultStartTime    = time.Second
	DefaultStartSpacing = 10 * time.Microsecond
	DefaultTransport    = InmemTransport
)

// Transports.
const (
	// InmemTransport simulates the channel in memory.
	InmemTransport = "inmem"
	// UDPTransport exchanges real datagrams on the loopback interface. It
	// implies Realtime, and the link quality presets do not apply.
	UDPTransport = "udp"
)

// Config describes one run.
type Config struct {
	// NumNodes is the number of participants.
	NumNodes uint32 `mapstructure:"nodes"`

	// LinkQuality selects the channel preset.
	LinkQuality LinkQuality `mapstructure:"link-quality"`

	// RunID identifies the run in stored results. A random one is generated
	// when empty.
	RunID string `mapstructure:"run-id"`

	// Seed drives every random draw of the run: the channel, and each node's
	// forwarding policy.
	Seed int64 `mapstructure:"seed"`

	// SimTime bounds the run.
	SimTime time.Duration `mapstructure:"sim-time"`

	// StartTime is when node 0 starts. Completion time is measured from it.
	StartTime time.Duration `mapstructure:"start-time"`

	// StartSpacing staggers node starts: node i starts at
	// StartTime + i*StartSpacing.
	StartSpacing time.Duration `mapstructure:"start-spacing"`

	// Realtime runs on the wall clock instead of virtual time.
	Realtime bool `mapstructure:"realtime"`

	// Transport is InmemTransport or UDPTransport.
	Transport string `mapstructure:"transport"`

	// BasePort is the UDP port of node 0; node i binds BasePort+i. With 0
	// every node binds a free port.
	BasePort int `mapstructure:"base-port"`

	// Node holds the protocol timings shared by every node.
	Node node.Config `mapstructure:",squash"`

	// Metrics is shared by the nodes of the run. Optional.
	Metrics *node.Metrics `mapstructure:"-"`
}

// NewDefaultConfig ...
func NewDefaultConfig() *Config {
	return &Config{
		NumNodes:     DefaultNumNodes,
		LinkQuality:  DefaultLinkQuality,
		Seed:         1,
		SimTime:      DefaultSimTime,
		StartTime:    DefaultStartTime,
		StartSpacing: DefaultStartSpacing,
		Transport:    DefaultTransport,
		Node:         *node.DefaultConfig(DefaultNumNodes),
	}
}

// NewTestConfig returns a config logging through t.
func NewTestConfig(t testing.TB, numNodes uint32) *Config {
	config := NewDefaultConfig()
	config.NumNodes = numNodes
	config.Node.NumNodes = numNodes
	config.Node.Logger = common.NewTestLogger(t, logrus.InfoLevel)
	return config
}
