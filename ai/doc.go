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


// Package ai provides abstractions for the embedding services used by
// the corpus pipeline.
//
// The ingestor and the query tool both depend on the Embedder
// interface defined here rather than on a concrete provider, so tests
// run against the deterministic mock in ai/mock and production runs
// use the OpenAI-compatible client in ai/openai.
//
// # Configuration
//
// Config carries the provider host, model and API key. NewConfig
// applies functional options over defaults; Validate normalizes the
// host (adding the /v1 suffix OpenAI-compatible servers expect) before
// checking required fields:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("text-embedding-3-small"),
//	)
//	embedder, err := openai.NewEmbedder(cfg)
package ai
