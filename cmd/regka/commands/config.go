package commands

import (
	"github.com/mosaicnetworks/regka/src/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//CLIConfig contains configuration for the regka commands
type CLIConfig struct {
	Regka config.Config `mapstructure:",squash"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Regka: *config.NewDefaultConfig(),
	}
}

//AddCommonFlags adds the flags shared by every command
func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Regka.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Regka.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.Regka.LogFile, "Copy log output to this file as JSON")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.Regka.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Regka.Store, "Save results in badgerDB")
	cmd.Flags().String("db", _config.Regka.DatabaseDir, "Dabatabase directory")
	cmd.Flags().String("csv", _config.Regka.CSVFile, "File results are appended to")
	cmd.Flags().Bool("no-csv", _config.Regka.NoCSV, "Do not write results to the CSV file")
}

//AddSimFlags adds the flags describing a run
func AddSimFlags(cmd *cobra.Command) {
	sc := _config.Regka.Sim

	cmd.Flags().Uint32P("nodes", "n", sc.NumNodes, "Number of nodes")
	cmd.Flags().StringP("link-quality", "q", string(sc.LinkQuality), "high, medium, low, very_poor")
	cmd.Flags().String("run-id", sc.RunID, "Run identifier (random if empty)")
	cmd.Flags().Int64("seed", sc.Seed, "Seed of every random draw")
	cmd.Flags().Duration("sim-time", sc.SimTime, "Upper bound on the run")
	cmd.Flags().Duration("start-time", sc.StartTime, "Start of the first node")
	cmd.Flags().Duration("start-spacing", sc.StartSpacing, "Delay between consecutive node starts")
	cmd.Flags().Bool("realtime", sc.Realtime, "Run on the wall clock instead of virtual time")
	cmd.Flags().String("transport", sc.Transport, "inmem, udp (udp implies --realtime)")
	cmd.Flags().Int("base-port", sc.BasePort, "UDP port of node 0, 0 for free ports")

	// Node configuration
	cmd.Flags().Duration("announce-delay", sc.Node.AnnounceDelay, "Delay before the first broadcast")
	cmd.Flags().Duration("periodic-start", sc.Node.PeriodicStart, "Delay before periodic broadcasts")
	cmd.Flags().Duration("periodic-interval", sc.Node.PeriodicInterval, "Time between periodic broadcasts")
	cmd.Flags().Duration("send-delay", sc.Node.SendDelay, "Delay applied to every transmission")
	cmd.Flags().Float64("forward-floor", sc.Node.ForwardFloor, "Minimum forwarding probability")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db or --csv, this will
	// update the default paths to be inside the new datadir
	_config.Regka.SetDataDir(_config.Regka.DataDir)

	logFields := logrus.Fields{
		"regka.DataDir":     _config.Regka.DataDir,
		"regka.LogLevel":    _config.Regka.LogLevel,
		"regka.ServiceAddr": _config.Regka.ServiceAddr,
		"regka.Store":       _config.Regka.Store,
		"regka.NoCSV":       _config.Regka.NoCSV,

		"sim.NumNodes":          _config.Regka.Sim.NumNodes,
		"sim.LinkQuality":       _config.Regka.Sim.LinkQuality,
		"sim.Seed":              _config.Regka.Sim.Seed,
		"sim.SimTime":           _config.Regka.Sim.SimTime,
		"sim.Realtime":          _config.Regka.Sim.Realtime,
		"sim.Transport":         _config.Regka.Sim.Transport,
		"node.AnnounceDelay":    _config.Regka.Sim.Node.AnnounceDelay,
		"node.PeriodicStart":    _config.Regka.Sim.Node.PeriodicStart,
		"node.PeriodicInterval": _config.Regka.Sim.Node.PeriodicInterval,
		"node.SendDelay":        _config.Regka.Sim.Node.SendDelay,
		"node.ForwardFloor":     _config.Regka.Sim.Node.ForwardFloor,
	}

	if _config.Regka.Store {
		logFields["regka.DatabaseDir"] = _config.Regka.DatabaseDir
	}
	if !_config.Regka.NoCSV {
		logFields["regka.CSVFile"] = _config.Regka.CSVFile
	}

	_config.Regka.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/regka.toml (.json, .yaml also work)
	viper.SetConfigName("regka")               // name of config file (without extension)
	viper.AddConfigPath(_config.Regka.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Regka.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Regka.Logger().Debugf("No config file found in: %s", _config.Regka.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
