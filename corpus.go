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


// Package tbpcorpus ties the pipeline stages together behind one
// handle: a BadgerDB-backed vector collection plus the embedder, with
// constructors for the ingestor and the searcher that share them.
package tbpcorpus

import (
	"log/slog"

	"github.com/btservant/tbpcorpus/ai"
	"github.com/btservant/tbpcorpus/ai/openai"
	"github.com/btservant/tbpcorpus/ingest"
	"github.com/btservant/tbpcorpus/search"
	"github.com/btservant/tbpcorpus/storage"
	"github.com/btservant/tbpcorpus/storage/badger"
)

// Corpus is one named collection in a BadgerDB store, with the
// embedding service both the ingestor and the searcher use.
type Corpus struct {
	backend    *badger.Backend
	collection storage.CollectionRepository
	ledger     storage.LedgerRepository
	embedder   ai.Embedder
	name       string
	logger     *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
}

// WithAIConfig overrides the default embedding service configuration.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder supplies a pre-built embedder, bypassing the OpenAI
// client construction. Intended for tests.
func WithEmbedder(embedder ai.Embedder) CorpusOption {
	return func(o *corpusOptions) {
		o.embedder = embedder
	}
}

// OpenCorpus opens (or creates) the named collection in the database
// at filePath.
func OpenCorpus(filePath, name string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	collection, err := badger.NewCollectionRepository(backend, name)
	if err != nil {
		backend.Close()
		return nil, err
	}
	ledger := badger.NewLedgerRepository(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			collection.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Corpus{
		backend:    backend,
		collection: collection,
		ledger:     ledger,
		embedder:   embedder,
		name:       name,
		logger:     slog.Default(),
	}, nil
}

func (c *Corpus) Close() error {
	if err := c.collection.Close(); err != nil {
		c.logger.Error("error closing collection repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Corpus) Collection() storage.CollectionRepository {
	return c.collection
}

func (c *Corpus) Ledger() storage.LedgerRepository {
	return c.ledger
}

func (c *Corpus) NewIngestor(opts ...ingest.Option) (*ingest.Ingestor, error) {
	return ingest.New(c.name, c.collection, c.ledger, c.embedder, opts...)
}

func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.collection, c.embedder, opts...)
}
