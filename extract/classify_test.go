package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules(t *testing.T) Rules {
	t.Helper()
	rules, err := CompileRules([]*Rule{
		{FolderPattern: `Script-References/(.+)`, Type: "Transcript", Series: "$1"},
		{FolderPattern: `Script-References`, Type: "Transcript", Series: "General"},
		{FolderPattern: `Study-Notes`, Type: "Study-Notes", Series: "Classroom"},
	})
	require.NoError(t, err)
	return rules
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := testRules(t)

	docType, series := rules.Classify("Script-References/Torah-Series")
	assert.Equal(t, "Transcript", docType)
	assert.Equal(t, "Torah-Series", series)

	docType, series = rules.Classify("Study-Notes/Whatever")
	assert.Equal(t, "Study-Notes", docType)
	assert.Equal(t, "Classroom", series)
}

func TestClassifyCaptureSubstitution(t *testing.T) {
	_, series := testRules(t).Classify("Script-References/Wisdom-Series/Extra")
	assert.Equal(t, "Wisdom-Series/Extra", series)
}

func TestClassifyDefault(t *testing.T) {
	docType, series := testRules(t).Classify("Insight-Videos")
	assert.Equal(t, DefaultType, docType)
	assert.Equal(t, DefaultSeries, series)

	// An empty table classifies everything as default.
	var empty Rules
	docType, series = empty.Classify("anything")
	assert.Equal(t, DefaultType, docType)
	assert.Equal(t, DefaultSeries, series)
}

func TestClassifyIsPure(t *testing.T) {
	rules := testRules(t)
	t1, s1 := rules.Classify("Script-References/Torah-Series")
	t2, s2 := rules.Classify("Script-References/Torah-Series")
	assert.Equal(t, t1, t2)
	assert.Equal(t, s1, s2)
}

func TestCompileRulesInvalid(t *testing.T) {
	_, err := CompileRules([]*Rule{{FolderPattern: `([`}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRuleTable)

	_, err = CompileRules([]*Rule{{FolderPattern: ""}})
	assert.ErrorIs(t, err, ErrInvalidRuleTable)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, rules, redirects, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, rules)
	assert.Empty(t, redirects)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace collapse", "a\n\n  b\tc", "a b c"},
		{"control chars", "a\x00b\x07c", "abc"},
		{"smart quotes", "“hello” and ‘there’", `"hello" and 'there'`},
		{"page labels", "before Page 12 after", "before  after"},
		{"page fractions", "text 3 / 12 more", "text  more"},
		{"trimmed", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Genesis-1-11_Transcript.pdf", "Genesis 1 11"},
		{"Heaven-and-Earth_Study-Notes.pdf", "Heaven and Earth"},
		{"Justice_SR.pdf", "Justice"},
		{"Plain-Title.pdf", "Plain Title"},
		{"Nested/Dir/The-Law_Transcript.pdf", "The Law"},
		{"Genesis-1-11_Transcript.pages.json", "Genesis 1 11"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveTitle(tt.in))
	}
}
