package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/policy"
	"github.com/sirupsen/logrus"
)

// Default protocol timings.
const (
	DefaultAnnounceDelay    = 5 * time.Millisecond
	DefaultPeriodicStart    = 1100 * time.Millisecond
	DefaultPeriodicInterval = 100 * time.Millisecond
	DefaultSendDelay        = 5 * time.Millisecond
)

// Config contains the protocol parameters of a node. All nodes of a run share
// the same Config.
type Config struct {
	// NumNodes is N, the number of participants and the matrix dimension. It
	// is set by the driver of the run.
	NumNodes uint32 `mapstructure:"-"`

	// AnnounceDelay is the delay between Start and the first broadcast, which
	// carries only the node's own contribution.
	AnnounceDelay time.Duration `mapstructure:"announce-delay"`

	// PeriodicStart is the delay between Start and the first periodic
	// broadcast.
	PeriodicStart time.Duration `mapstructure:"periodic-start"`

	// PeriodicInterval separates periodic broadcasts.
	PeriodicInterval time.Duration `mapstructure:"periodic-interval"`

	// SendDelay defers every transmission after the decision to send.
	SendDelay time.Duration `mapstructure:"send-delay"`

	// ForwardFloor is the lower bound of the forwarding probability.
	ForwardFloor float64 `mapstructure:"forward-floor"`

	Logger *logrus.Logger `mapstructure:"-"`
}

// NewConfig ...
func NewConfig(numNodes uint32,
	announceDelay time.Duration,
	periodicStart time.Duration,
	periodicInterval time.Duration,
	sendDelay time.Duration,
	forwardFloor float64,
	logger *logrus.Logger) *Config {

	return &Config{
		NumNodes:         numNodes,
		AnnounceDelay:    announceDelay,
		PeriodicStart:    periodicStart,
		PeriodicInterval: periodicInterval,
		SendDelay:        sendDelay,
		ForwardFloor:     forwardFloor,
		Logger:           logger,
	}
}

// DefaultConfig ...
func DefaultConfig(numNodes uint32) *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return NewConfig(numNodes,
		DefaultAnnounceDelay,
		DefaultPeriodicStart,
		DefaultPeriodicInterval,
		DefaultSendDelay,
		policy.DefaultFloor,
		logger)
}

// TestConfig ...
func TestConfig(t testing.TB, numNodes uint32) *Config {
	config := DefaultConfig(numNodes)
	config.Logger = common.NewTestLogger(t, logrus.DebugLevel)
	return config
}
