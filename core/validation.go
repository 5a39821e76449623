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

import (
	"fmt"
	"strings"
)

// ValidateDocumentRecord validates a DocumentRecord according to domain rules.
//
// Validation rules:
//   - Pages[].Text joined in page order must equal FullText exactly
//   - Every entity position must fall within its owning page's text
//   - Every aggregate entity must also appear in its page's entity list
//   - Every stored timestamp must satisfy end > start
func ValidateDocumentRecord(record *DocumentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidDocumentRecord)
	}

	pageTexts := make([]string, len(record.Pages))
	for i, page := range record.Pages {
		pageTexts[i] = page.Text
	}
	if strings.Join(pageTexts, " ") != record.FullText {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrPageTextMismatch)
	}

	pageByNumber := make(map[int]*PageText, len(record.Pages))
	for i := range record.Pages {
		page := &record.Pages[i]
		pageByNumber[page.Page] = page

		for _, ref := range page.BibleReferences {
			if ref.Position < 0 || ref.Position >= len(page.Text) {
				return fmt.Errorf("%w: reference %q at %d on page %d: %w",
					ErrInvalidDocumentRecord, ref.Text, ref.Position, page.Page, ErrEntityOutOfBounds)
			}
		}
		for _, ts := range page.Timestamps {
			if ts.Position < 0 || ts.Position >= len(page.Text) {
				return fmt.Errorf("%w: timestamp %s-%s at %d on page %d: %w",
					ErrInvalidDocumentRecord, ts.Start, ts.End, ts.Position, page.Page, ErrEntityOutOfBounds)
			}
			if ts.EndSeconds <= ts.StartSeconds {
				return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrInvalidTimestampRange)
			}
		}
	}

	for _, ref := range record.BibleReferences {
		page, ok := pageByNumber[ref.Page]
		if !ok || !containsReference(page.BibleReferences, ref) {
			return fmt.Errorf("%w: reference %q page %d: %w",
				ErrInvalidDocumentRecord, ref.Text, ref.Page, ErrOrphanEntity)
		}
	}
	for _, ts := range record.Timestamps {
		page, ok := pageByNumber[ts.Page]
		if !ok || !containsTimestamp(page.Timestamps, ts) {
			return fmt.Errorf("%w: timestamp %s-%s page %d: %w",
				ErrInvalidDocumentRecord, ts.Start, ts.End, ts.Page, ErrOrphanEntity)
		}
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - ID and StrategyID must not be empty
//   - Strategy must be a known strategy tag
//   - Text must not be empty
func ValidateChunkRecord(chunk *ChunkRecord) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunkRecord)
	}
	if chunk.ID == "" || chunk.StrategyID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyChunkID)
	}
	if !chunk.Strategy.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidChunkRecord, ErrUnknownStrategy, chunk.Strategy)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyChunkText)
	}
	return nil
}

func containsReference(refs []BibleReference, want BibleReference) bool {
	for _, ref := range refs {
		if ref.Position == want.Position && ref.Text == want.Text {
			return true
		}
	}
	return false
}

func containsTimestamp(timestamps []Timestamp, want Timestamp) bool {
	for _, ts := range timestamps {
		if ts.Position == want.Position && ts.Start == want.Start && ts.End == want.End {
			return true
		}
	}
	return false
}
