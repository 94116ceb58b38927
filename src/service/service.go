package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	cm "github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/mosaicnetworks/regka/src/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Service exposes stored results, the live stats of the current run and the
// prometheus metrics over HTTP.
type Service struct {
	sync.Mutex

	bindAddress string
	store       store.Store
	registry    *prometheus.Registry
	simulation  *sim.Simulation
	logger      *logrus.Entry

	mux    *http.ServeMux
	server *http.Server
}

// NewService ...
func NewService(bindAddress string,
	st store.Store,
	registry *prometheus.Registry,
	logger *logrus.Entry,
) *Service {
	service := Service{
		bindAddress: bindAddress,
		store:       st,
		registry:    registry,
		logger:      logger,
		mux:         http.NewServeMux(),
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering API handlers")
	s.mux.HandleFunc("/results", s.makeHandler(s.GetResults))
	s.mux.HandleFunc("/results/", s.makeHandler(s.GetResult))
	s.mux.HandleFunc("/results.csv", s.makeHandler(s.GetResultsCSV))
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	if s.registry != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the service's routes.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// SetSimulation sets the run whose nodes /stats reports on.
func (s *Service) SetSimulation(simulation *sim.Simulation) {
	s.Lock()
	defer s.Unlock()
	s.simulation = simulation
}

// Serve calls ListenAndServe. This is a blocking call that returns nil once
// Shutdown is called.
func (s *Service) Serve() error {
	s.Lock()
	s.server = &http.Server{
		Addr:              s.bindAddress,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := s.server
	s.Unlock()

	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		s.logger.Error(err)
	}
	return err
}

// Shutdown stops a running Serve.
func (s *Service) Shutdown(ctx context.Context) error {
	s.Lock()
	server := s.server
	s.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// GetResults ...
func (s *Service) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Error("Listing results")

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(results)
}

// GetResult ...
func (s *Service) GetResult(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/results/")
	if runID == "" {
		http.Error(w, "missing run id", http.StatusBadRequest)
		return
	}

	result, err := s.store.Get(runID)
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		s.logger.WithError(err).Errorf("Retrieving result %s", runID)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(result)
}

// GetResultsCSV ...
func (s *Service) GetResultsCSV(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Error("Listing results")

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv")

	if err := store.WriteCSV(w, results); err != nil {
		s.logger.WithError(err).Error("Writing CSV")
	}
}

// GetStats returns the stats of every node of the current run.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := []map[string]string{}
	if s.simulation != nil {
		for _, n := range s.simulation.Nodes() {
			stats = append(stats, n.GetStats())
		}
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}
