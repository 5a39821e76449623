// Copyright 2025 BT Servant
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


package badger

import (
	"context"
	"time"

	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
	"github.com/dgraph-io/badger/v4"
)

// LedgerRepository implements storage.LedgerRepository for BadgerDB.
type LedgerRepository struct {
	backend *Backend
}

var _ storage.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(backend *Backend) storage.LedgerRepository {
	return &LedgerRepository{
		backend: backend,
	}
}

// SaveLedger persists a ledger entry for a (collection, strategy) pair.
func (r *LedgerRepository) SaveLedger(ctx context.Context, ledger *core.Ledger) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		ledger.UpdatedAtMS = time.Now().UTC().UnixMilli()
		value, err := storage.MarshalLedger(ledger)
		if err != nil {
			return err
		}
		key := makeLedgerKey(ledger.Collection, ledger.Strategy)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadLedger retrieves the ledger for a (collection, strategy) pair.
// Returns nil, nil if no ledger exists.
func (r *LedgerRepository) LoadLedger(ctx context.Context, collection string, strategy core.Strategy) (*core.Ledger, error) {
	var ledger *core.Ledger
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeLedgerKey(collection, strategy))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			ledger, unmarshalErr = storage.UnmarshalLedger(val)
			return unmarshalErr
		})
	}, false)

	return ledger, err
}

// ResetLedger removes the ledger entry for a (collection, strategy) pair.
func (r *LedgerRepository) ResetLedger(ctx context.Context, collection string, strategy core.Strategy) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := tx.Delete(makeLedgerKey(collection, strategy))
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return tx.Commit()
	}, true)
}
