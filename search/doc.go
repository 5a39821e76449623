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


// Package search provides read-only query access to an ingested corpus
// collection.
//
// The Searcher embeds the query text and ranks collection entries by
// vector similarity, optionally restricted to a chunking strategy or a
// Bible book and chapter. Results whose text contains every query word
// verbatim are promoted ahead of purely semantic hits. The package
// never mutates the collection.
package search
