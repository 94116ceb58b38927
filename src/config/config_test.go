package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDataDir(t *testing.T) {
	c := NewDefaultConfig()
	c.SetDataDir("/tmp/regka")

	assert.Equal(t, "/tmp/regka", c.DataDir)
	assert.Equal(t, filepath.Join("/tmp/regka", DefaultBadgerFile), c.DatabaseDir)
	assert.Equal(t, filepath.Join("/tmp/regka", DefaultCSVFile), c.CSVFile)

	c = NewDefaultConfig()
	c.DatabaseDir = "/var/db"
	c.SetDataDir("/tmp/regka")
	assert.Equal(t, "/var/db", c.DatabaseDir)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, LogLevel("info"))
	assert.Equal(t, logrus.WarnLevel, LogLevel("warn"))
	assert.Equal(t, logrus.DebugLevel, LogLevel("nonsense"))
}

func TestSimConfigSharesLogger(t *testing.T) {
	c := NewTestConfig(t, logrus.InfoLevel)
	c.Sim.NumNodes = 5

	sc := c.SimConfig()
	assert.Equal(t, uint32(5), sc.NumNodes)
	assert.Equal(t, sim.DefaultLinkQuality, sc.LinkQuality)
	assert.Same(t, c.Logger().Logger, sc.Node.Logger)

	// the copy does not alias the config
	sc.NumNodes = 9
	assert.Equal(t, uint32(5), c.Sim.NumNodes)
}

func TestLogFileHook(t *testing.T) {
	c := NewDefaultConfig()
	c.LogLevel = "info"
	c.LogFile = filepath.Join(t.TempDir(), "regka.log")

	c.Logger().Info("hello file")

	data, err := os.ReadFile(c.LogFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"hello file"`))
	assert.True(t, strings.Contains(string(data), `"prefix":"regka"`))
}
