package photocache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger"
)

var snapshotKey = []byte("photo-url-cache")

// BadgerSnapshotStore keeps the cache snapshot as a single value in an
// embedded Badger key-value store.
type BadgerSnapshotStore struct {
	db *badger.DB
}

func NewBadgerSnapshotStore(db *badger.DB) *BadgerSnapshotStore {
	return &BadgerSnapshotStore{db: db}
}

func (s *BadgerSnapshotStore) Read(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("while reading snapshot from badger: %w", err)
	}
	return data, true, nil
}

func (s *BadgerSnapshotStore) Write(ctx context.Context, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("while writing snapshot to badger: %w", err)
	}
	return nil
}

func (s *BadgerSnapshotStore) Remove(ctx context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey)
	})
	if err != nil {
		return fmt.Errorf("while removing snapshot from badger: %w", err)
	}
	return nil
}
