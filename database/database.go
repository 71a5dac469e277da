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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/numbat/database/plugin"
	"github.com/blinklabs-io/numbat/database/plugin/blob"
	"github.com/blinklabs-io/numbat/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"

	// Register storage plugins
	_ "github.com/blinklabs-io/numbat/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/numbat/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/numbat/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/numbat/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the database configuration. An empty DataDir keeps all data
// in memory
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
}

type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	config   *Config
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Config returns the config object used for the database
func (d *Database) Config() *Config {
	return d.config
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.config.DataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using the
// provided data directory
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	if config.BlobPlugin == "" {
		config.BlobPlugin = DefaultBlobPlugin
	}
	if config.MetadataPlugin == "" {
		config.MetadataPlugin = DefaultMetadataPlugin
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	// The configured data dir applies to every plugin that stores local files
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, config.BlobPlugin, "data-dir", config.DataDir); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, config.MetadataPlugin, "data-dir", config.DataDir); err != nil {
		return nil, err
	}
	pctx := plugin.PluginContext{
		Logger:       logger,
		PromRegistry: config.PromRegistry,
	}
	metadataDb, err := metadata.New(config.MetadataPlugin, pctx)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobDb, err := blob.New(config.BlobPlugin, pctx)
	if err != nil {
		_ = metadataDb.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		config:   config,
	}
	if err := db.checkCommitTimestamp(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
