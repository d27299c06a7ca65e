// Package badgerdb implements store.Store on an embedded Badger key-value
// database. Entities are JSON documents; ordering and lookups go through
// secondary index keys.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/MohammadRstm/BookApp/internal/store"
)

var _ store.Store = (*Store)(nil)

// maxConflictRetries bounds how often a write is replayed after Badger
// reports a transaction conflict.
const maxConflictRetries = 3

// sequenceBandwidth is how many sequence numbers are leased at once.
const sequenceBandwidth = 100

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	bookSeq   *badger.Sequence
	reviewSeq *badger.Sequence
}

// Open opens the database in dir. An empty dir opens an in-memory database.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = dir != ""  // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{db: db, logger: logger}

	if s.bookSeq, err = db.GetSequence([]byte(bookSeqKey), sequenceBandwidth); err != nil {
		db.Close()
		return nil, fmt.Errorf("book sequence: %w", err)
	}
	if s.reviewSeq, err = db.GetSequence([]byte(reviewSeqKey), sequenceBandwidth); err != nil {
		_ = s.bookSeq.Release()
		db.Close()
		return nil, fmt.Errorf("review sequence: %w", err)
	}

	logger.Info("Badger database opened", "path", dir, "in_memory", dir == "")
	return s, nil
}

// Close releases leased sequence numbers and closes the database.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	err := errors.Join(s.bookSeq.Release(), s.reviewSeq.Release())
	return errors.Join(err, s.db.Close())
}

// Ping reports whether the database is still open.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// update runs fn in a read-write transaction, replaying it when a
// concurrent transaction touched the same keys.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// getJSON loads and decodes the value at key. A missing key is
// store.ErrNotFound.
func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setJSON encodes value and stores it at key.
func setJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// exists checks whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// indexValues collects the values stored under an index prefix in key
// order. Index values are entity IDs.
func indexValues(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		ids = append(ids, string(val))
	}
	return ids, nil
}
