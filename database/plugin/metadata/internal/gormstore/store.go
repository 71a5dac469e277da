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

// Package gormstore implements the metadata store operations shared by the
// gorm backed metadata plugins. Each plugin opens its own dialect and embeds
// a Store.
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// gormTxn wraps a gorm transaction and implements types.Txn
type gormTxn struct {
	store    *Store
	db       *gorm.DB
	beginErr error
	finished bool
}

func (t *gormTxn) Commit() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *gormTxn) Rollback() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Rollback().Error
}

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps an opened gorm handle. It enables gorm tracing and migrates the
// schema
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Store{
		db:     db,
		logger: logger,
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	s.logger.Debug(
		fmt.Sprintf("creating table: %#v", &CommitTimestamp{}),
		"component", "database",
	)
	if err := s.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// DB returns the underlying gorm handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Logger returns the store logger
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Transaction begins a new transaction. A failure to begin is reported by
// every operation that uses the returned handle
func (s *Store) Transaction() types.Txn {
	db := s.db.Begin()
	if db.Error != nil {
		s.logger.Error(
			"failed to begin transaction",
			"component", "database",
			"error", db.Error,
		)
		return &gormTxn{store: s, beginErr: db.Error}
	}
	return &gormTxn{store: s, db: db}
}

// resolveDB returns the gorm handle to run a query on. A nil txn runs the
// query outside of any transaction
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.db, nil
	}
	gTxn, ok := txn.(*gormTxn)
	if !ok || gTxn == nil {
		return nil, types.ErrTxnWrongType
	}
	if gTxn.beginErr != nil {
		return nil, gTxn.beginErr
	}
	if gTxn.store != s {
		return nil, errors.New("transaction from different store")
	}
	if gTxn.finished {
		return nil, errors.New("transaction already finished")
	}
	return gTxn.db, nil
}

// first runs a First query and maps a missing record to a nil result
func first[T any](db *gorm.DB, query any, args ...any) (*T, error) {
	var ret T
	if result := db.Where(query, args...).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}
