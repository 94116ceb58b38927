package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mosaicnetworks/regka/src/node"
	"github.com/mosaicnetworks/regka/src/service"
	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/mosaicnetworks/regka/src/store"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// outputs bundles what a command writes results and metrics to.
type outputs struct {
	store    store.Store
	registry *prometheus.Registry
	metrics  *node.Metrics
	service  *service.Service
	logger   *logrus.Entry
}

func newOutputs(persistent bool) (*outputs, error) {
	logger := _config.Regka.Logger()

	var st store.Store
	if persistent {
		bs, err := store.NewBadgerStore(_config.Regka.DatabaseDir, logger)
		if err != nil {
			logger.WithError(err).Error("Cannot open database")
			return nil, err
		}
		st = bs
	} else {
		st = store.NewInmemStore()
	}

	registry := prometheus.NewRegistry()
	metrics := node.NewMetrics()
	metrics.Register(registry)

	o := &outputs{
		store:    st,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}

	if _config.Regka.ServiceAddr != "" {
		o.service = service.NewService(
			_config.Regka.ServiceAddr,
			st,
			registry,
			logger.WithField("prefix", "service"),
		)
	}

	return o, nil
}

// save stores a result and appends it to the CSV file.
func (o *outputs) save(result *sim.Result) error {
	if err := o.store.Put(result); err != nil {
		return err
	}

	if _config.Regka.NoCSV {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(_config.Regka.CSVFile), 0700); err != nil {
		return err
	}
	return store.AppendCSV(_config.Regka.CSVFile, result)
}

func (o *outputs) close() {
	if err := o.store.Close(); err != nil {
		o.logger.WithError(err).Warn("Closing store")
	}
}

// execute runs work alongside the HTTP service, if any, until work returns or
// the process is signalled. A signal cancels the context passed to work.
func (o *outputs) execute(work func(ctx context.Context) error) error {
	var g run.Group

	ctx, cancel := context.WithCancel(context.Background())
	g.Add(func() error {
		return work(ctx)
	}, func(error) {
		cancel()
	})

	if o.service != nil {
		g.Add(func() error {
			return o.service.Serve()
		}, func(error) {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			if err := o.service.Shutdown(sctx); err != nil {
				o.logger.WithError(err).Warn("Shutting down service")
			}
		})
	}

	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err := g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		o.logger.WithField("signal", sigErr.Signal).Info("Interrupted")
		return nil
	}
	return err
}

func simConfig() (*sim.Config, error) {
	conf := _config.Regka.SimConfig()

	lq, err := sim.ParseLinkQuality(string(conf.LinkQuality))
	if err != nil {
		return nil, err
	}
	conf.LinkQuality = lq

	return conf, nil
}
