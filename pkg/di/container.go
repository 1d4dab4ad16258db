// Package di provides dependency injection container
package di

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/freyjawal/pkg/api"
	"github.com/ssargent/freyjawal/pkg/config"
	"github.com/ssargent/freyjawal/pkg/sequence"
	"github.com/ssargent/freyjawal/pkg/wal"
)

// Container holds all the dependencies for the application
type Container struct {
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	metricsOnce sync.Once
	walMetrics  *wal.Metrics
	apiMetrics  *api.Metrics

	serviceFactory ServiceFactory
}

// NewContainer creates a new dependency injection container with the
// default configuration. Commands call Configure once flags are parsed.
func NewContainer() *Container {
	return &Container{
		config:         config.DefaultConfig(),
		logger:         slog.Default(),
		registry:       prometheus.NewRegistry(),
		serviceFactory: NewServiceFactory(),
	}
}

// Configure replaces the configuration and logger
func (c *Container) Configure(cfg *config.Config, logger *slog.Logger) {
	c.config = cfg
	if logger != nil {
		c.logger = logger
	}
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// GetRegistry returns the Prometheus registry every component registers with
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// metrics registers the writer and API metrics on first use. Registering the
// same collectors twice would panic.
func (c *Container) metrics() (*wal.Metrics, *api.Metrics) {
	c.metricsOnce.Do(func() {
		c.walMetrics = wal.NewMetrics(c.registry)
		c.apiMetrics = api.NewMetrics(c.registry)
	})
	return c.walMetrics, c.apiMetrics
}

// OpenWriter opens the configured log file
func (c *Container) OpenWriter() (*wal.LogWriter, error) {
	cfg, err := c.config.WriterConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = c.logger
	cfg.Metrics, _ = c.metrics()
	return wal.New(cfg)
}

// OpenSequencer opens the configured LSN sequencer
func (c *Container) OpenSequencer() (*sequence.Sequencer, error) {
	return sequence.Open(c.config.SequenceDir())
}

// GetServiceFactory returns the service factory
func (c *Container) GetServiceFactory() ServiceFactory {
	return c.serviceFactory
}

// SetServiceFactory allows overriding the service factory (for testing)
func (c *Container) SetServiceFactory(factory ServiceFactory) {
	c.serviceFactory = factory
}

// Service is a running writer service and the resources it owns
type Service struct {
	Server    *api.Server
	Writer    *wal.LogWriter
	Sequencer *sequence.Sequencer
}

// Close flushes and closes the writer, then closes the sequencer
func (s *Service) Close() error {
	var err error
	if s.Writer != nil {
		err = s.Writer.Close()
	}
	if s.Sequencer != nil {
		err = errors.CombineErrors(err, s.Sequencer.Close())
	}
	return err
}

// ServiceFactory builds the HTTP writer service
type ServiceFactory interface {
	CreateService(c *Container, apiKey string) (*Service, error)
}

// DefaultServiceFactory is the default implementation of ServiceFactory
type DefaultServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() ServiceFactory {
	return &DefaultServiceFactory{}
}

// CreateService opens the writer and sequencer and wraps them in an API server
func (f *DefaultServiceFactory) CreateService(c *Container, apiKey string) (*Service, error) {
	writer, err := c.OpenWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to open log writer: %w", err)
	}

	seq, err := c.OpenSequencer()
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to open sequencer: %w", err)
	}

	cfg := c.GetConfig()
	_, apiMetrics := c.metrics()
	server := api.NewServer(writer, seq, api.ServerConfig{
		Port:    cfg.Port,
		Bind:    cfg.Bind,
		APIKey:  apiKey,
		LogName: cfg.WAL.FileName,
	}, apiMetrics, c.GetLogger())

	return &Service{Server: server, Writer: writer, Sequencer: seq}, nil
}
