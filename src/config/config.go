package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultCSVFile is the default name of the results summary file.
	DefaultCSVFile = "results.csv"
)

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultServiceAddr = "127.0.0.1:8000"
	DefaultStore       = false
	DefaultNoCSV       = false
)

// Config contains all the configuration properties of a regka process.
type Config struct {
	// DataDir is the top-level directory containing regka configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log line as JSON.
	LogFile string `mapstructure:"log-file"`

	// ServiceAddr is the address:port of the optional HTTP service. The
	// service is only started when it is set.
	ServiceAddr string `mapstructure:"service-listen"`

	// Store activates persistant storage of results.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// CSVFile is the file results are appended to.
	CSVFile string `mapstructure:"csv"`

	// NoCSV disables the CSV output.
	NoCSV bool `mapstructure:"no-csv"`

	// Sim holds the parameters of the run.
	Sim sim.Config `mapstructure:",squash"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    DefaultLogLevel,
		Store:       DefaultStore,
		DatabaseDir: DefaultDatabaseDir(),
		CSVFile:     DefaultCSVPath(),
		NoCSV:       DefaultNoCSV,
		Sim:         *sim.NewDefaultConfig(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level regka directory, and updates the database
// directory and the CSV file if they are currently set to their default
// values. A non-default value means the user has explicitely set it, so avoid
// changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
	if c.CSVFile == DefaultCSVPath() {
		c.CSVFile = filepath.Join(dataDir, DefaultCSVFile)
	}
}

// Logger returns a formatted logrus Entry, with prefix set to "regka". The
// underlying logger is shared with the nodes of the run.
func (c *Config) Logger() *logrus.Entry {
	return c.baseLogger().WithField("prefix", "regka")
}

// SimConfig returns the run parameters with the shared logger installed.
func (c *Config) SimConfig() *sim.Config {
	conf := c.Sim
	conf.Node.Logger = c.baseLogger()
	return &conf
}

func (c *Config) baseLogger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.AddHook(lfshook.NewHook(
				lfshook.PathMap{
					logrus.DebugLevel: c.LogFile,
					logrus.InfoLevel:  c.LogFile,
					logrus.WarnLevel:  c.LogFile,
					logrus.ErrorLevel: c.LogFile,
					logrus.FatalLevel: c.LogFile,
					logrus.PanicLevel: c.LogFile,
				},
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultCSVPath returns the default path of the results summary file.
func DefaultCSVPath() string {
	return filepath.Join(DefaultDataDir(), DefaultCSVFile)
}

// DefaultDataDir return the default directory name for top-level regka config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Regka")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Regka")
		} else {
			return filepath.Join(home, ".regka")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
