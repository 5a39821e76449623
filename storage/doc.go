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


// Package storage provides the storage abstraction layer for the corpus
// pipeline.
//
// This package defines repository interfaces that decouple storage
// implementation from pipeline logic. The vector collection and the
// ingestion ledger are both behind interfaces so that backends can be
// swapped and tests can run against in-memory stores.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces
// rather than concrete types:
//
//	repo, err := badger.NewCollectionRepository(backend, "bibleproject")
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock implementations without modification.
//
// # Architecture
//
//   - CollectionRepository: upsert/read/similarity-search over one
//     named vector collection
//   - LedgerRepository: per-strategy ingestion progress, written only
//     after a batch is confirmed in the collection
//   - CollectionLister: enumeration of known collections
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
