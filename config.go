// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package numbat

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultShutdownTimeout = 30 * time.Second
	DefaultBlockInterval   = 5 * time.Second
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	genesis          *genesis.Genesis
	now              func() time.Time
	dataDir          string
	blobPlugin       string
	metadataPlugin   string
	apiListenAddress string
	blockInterval    time.Duration
	shutdownTimeout  time.Duration
	devMode          bool
	tracing          bool
	tracingStdout    bool
}

func (c *Config) validate() error {
	if c.genesis == nil {
		return errors.New("no genesis configured")
	}
	if c.blockInterval < 0 {
		return errors.New("block interval must not be negative")
	}
	if c.blockInterval > 0 && c.blockInterval < time.Second {
		return errors.New("block interval must be at least one second")
	}
	if c.shutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new numbat config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		blockInterval:   DefaultBlockInterval,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithGenesis specifies the genesis used to initialize an empty database. A
// database that was already initialized must have been initialized from the
// same genesis
func WithGenesis(g *genesis.Genesis) ConfigOptionFunc {
	return func(c *Config) {
		c.genesis = g
	}
}

// WithBlockInterval specifies how often a new block is sealed. Zero
// disables the block producer, leaving blocks to be sealed through the dev
// API. The default is 5 seconds
func WithBlockInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockInterval = interval
	}
}

// WithClock overrides the clock used for block timestamps
func WithClock(now func() time.Time) ConfigOptionFunc {
	return func(c *Config) {
		c.now = now
	}
}

// WithAPIListenAddress specifies the listen address for the REST API
// server. An empty string disables the server. The default is empty
// (disabled).
func WithAPIListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithDevMode enables development endpoints such as advancing the chain
// clock through the API
func WithDevMode(devMode bool) ConfigOptionFunc {
	return func(c *Config) {
		c.devMode = devMode
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
