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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocumentRecord indicates a DocumentRecord failed validation.
	ErrInvalidDocumentRecord = errors.New("invalid document record")

	// ErrInvalidChunkRecord indicates a ChunkRecord failed validation.
	ErrInvalidChunkRecord = errors.New("invalid chunk record")

	// ErrPageTextMismatch indicates the page texts do not reproduce the full text.
	ErrPageTextMismatch = errors.New("page texts do not reproduce full text")

	// ErrEntityOutOfBounds indicates an entity position falls outside its page text.
	ErrEntityOutOfBounds = errors.New("entity position out of page bounds")

	// ErrOrphanEntity indicates an aggregate entity missing from its page list.
	ErrOrphanEntity = errors.New("aggregate entity missing from page list")

	// ErrInvalidTimestampRange indicates a timestamp whose end is not after its start.
	ErrInvalidTimestampRange = errors.New("timestamp end must be after start")

	// ErrUnknownStrategy indicates an unrecognized chunking strategy tag.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrEmptyChunkText indicates a chunk with no text.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrEmptyChunkID indicates a chunk with no id.
	ErrEmptyChunkID = errors.New("chunk id cannot be empty")
)
