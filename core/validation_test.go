package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *DocumentRecord {
	ref := BibleReference{
		Text:       "Genesis 2:19",
		Book:       "Genesis",
		Chapter:    2,
		VerseStart: 19,
		Position:   14,
		Context:    "as it says in Genesis 2:19, the man named every creature",
		Page:       1,
	}
	ts := Timestamp{
		Start: "1:30", End: "2:45",
		StartSeconds: 90, EndSeconds: 165,
		Position: 0, Page: 2,
	}
	pageOne := "as it says in Genesis 2:19, the man named every creature"
	pageTwo := "1:30-2:45 and the story continues"

	return &DocumentRecord{
		FileInfo: FileInfo{Title: "Test", Filename: "test.pdf"},
		ContentStats: ContentStats{Pages: 2},
		Features: Features{
			HasBibleRefs: true, BibleRefCount: 1,
			HasTimestamps: true, TimestampCount: 1,
		},
		BibleReferences: []BibleReference{ref},
		Timestamps:      []Timestamp{ts},
		Pages: []PageText{
			{Page: 1, Text: pageOne, BibleReferences: []BibleReference{ref}},
			{Page: 2, Text: pageTwo, Timestamps: []Timestamp{ts}},
		},
		FullText: pageOne + " " + pageTwo,
	}
}

func TestValidateDocumentRecord_Valid(t *testing.T) {
	require.NoError(t, ValidateDocumentRecord(validRecord()))
}

func TestValidateDocumentRecord_Nil(t *testing.T) {
	err := ValidateDocumentRecord(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocumentRecord)
}

func TestValidateDocumentRecord_FullTextMismatch(t *testing.T) {
	record := validRecord()
	record.FullText = "something else entirely"

	err := ValidateDocumentRecord(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageTextMismatch)
}

func TestValidateDocumentRecord_ReferenceOutOfBounds(t *testing.T) {
	record := validRecord()
	record.Pages[0].BibleReferences[0].Position = len(record.Pages[0].Text) + 10
	record.BibleReferences[0].Position = record.Pages[0].BibleReferences[0].Position

	err := ValidateDocumentRecord(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntityOutOfBounds)
}

func TestValidateDocumentRecord_OrphanReference(t *testing.T) {
	record := validRecord()
	// Aggregate list has a reference its page list doesn't.
	record.Pages[0].BibleReferences = nil

	err := ValidateDocumentRecord(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrphanEntity)
}

func TestValidateDocumentRecord_InvertedTimestamp(t *testing.T) {
	record := validRecord()
	record.Pages[1].Timestamps[0].EndSeconds = 10
	record.Timestamps[0].EndSeconds = 10

	err := ValidateDocumentRecord(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTimestampRange)
}

func TestValidateChunkRecord(t *testing.T) {
	chunk := &ChunkRecord{
		ID:         "tbp_0000000000000001",
		Strategy:   StrategySemantic,
		StrategyID: "tbp_sem_9f8a7c6d_0000",
		Text:       "[Test] some text",
	}
	require.NoError(t, ValidateChunkRecord(chunk))

	missingID := *chunk
	missingID.ID = ""
	assert.ErrorIs(t, ValidateChunkRecord(&missingID), ErrEmptyChunkID)

	badStrategy := *chunk
	badStrategy.Strategy = "clustered"
	assert.ErrorIs(t, ValidateChunkRecord(&badStrategy), ErrUnknownStrategy)

	emptyText := *chunk
	emptyText.Text = ""
	assert.ErrorIs(t, ValidateChunkRecord(&emptyText), ErrEmptyChunkText)

	assert.ErrorIs(t, ValidateChunkRecord(nil), ErrInvalidChunkRecord)
}
