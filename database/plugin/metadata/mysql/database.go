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

package mysql

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/numbat/database/plugin/metadata/internal/gormstore"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MetadataStoreMysql stores metadata in MySQL
type MetadataStoreMysql struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger

	host     string
	port     uint
	user     string
	password string
	database string
	tlsMode  string
	timeZone string
	dsn      string
}

// New creates a new MySQL metadata store. The connection is opened by
// Start()
func New(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	d := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(d)
	}
	if d.host == "" {
		d.host = "localhost"
	}
	if d.port == 0 {
		d.port = 3306
	}
	if d.user == "" {
		d.user = "root"
	}
	if d.database == "" {
		d.database = "numbat"
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d, nil
}

// connString builds the DSN from the individual options unless a full DSN
// was provided
func (d *MetadataStoreMysql) connString() string {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf(
		"%s:%s",
		d.host,
		strconv.FormatUint(uint64(d.port), 10),
	)
	cfg.DBName = d.database
	cfg.ParseTime = true
	if d.timeZone != "" {
		if loc, err := time.LoadLocation(d.timeZone); err == nil {
			cfg.Loc = loc
		}
	}
	if d.tlsMode != "" {
		cfg.TLSConfig = d.tlsMode
	}
	return cfg.FormatDSN()
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	metadataDb, err := gorm.Open(
		gormmysql.Open(d.connString()),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
	if err != nil {
		return err
	}
	sqlDB, err := metadataDb.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	store, err := gormstore.New(metadataDb, d.logger)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.Store = store
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"host", d.host,
		"port", d.port,
		"database", d.database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the connection pool if it was opened
func (d *MetadataStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
