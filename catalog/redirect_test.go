package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectsApply(t *testing.T) {
	rules, err := CompileRedirects([]*Redirect{
		{Pattern: `Classroom-Notes/(.+)`, Target: "Study-Notes/$1", Enabled: true},
		{Pattern: `Old-Series`, Target: "Archive/Old-Series", Enabled: true},
	})
	require.NoError(t, err)

	got, ok := rules.Apply("Classroom-Notes/Torah-Series")
	require.True(t, ok)
	assert.Equal(t, "Study-Notes/Torah-Series", got)

	got, ok = rules.Apply("Old-Series")
	require.True(t, ok)
	assert.Equal(t, "Archive/Old-Series", got)

	_, ok = rules.Apply("Insight-Videos")
	assert.False(t, ok)
}

func TestRedirectsFirstMatchWins(t *testing.T) {
	rules, err := CompileRedirects([]*Redirect{
		{Pattern: `Notes/(.+)`, Target: "First/$1", Enabled: true},
		{Pattern: `Notes/Special`, Target: "Second", Enabled: true},
	})
	require.NoError(t, err)

	got, ok := rules.Apply("Notes/Special")
	require.True(t, ok)
	assert.Equal(t, "First/Special", got)
}

func TestRedirectsSkipDisabled(t *testing.T) {
	rules, err := CompileRedirects([]*Redirect{
		{Pattern: `Notes`, Target: "Elsewhere", Enabled: false},
	})
	require.NoError(t, err)

	_, ok := rules.Apply("Notes")
	assert.False(t, ok)
}

func TestCompileRedirectsInvalid(t *testing.T) {
	_, err := CompileRedirects([]*Redirect{{Pattern: `([`, Target: "x", Enabled: true}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRedirect)

	_, err = CompileRedirects([]*Redirect{{Pattern: "", Target: "x", Enabled: true}})
	assert.ErrorIs(t, err, ErrInvalidRedirect)
}

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become dashes", "Script References", "Script-References"},
		{"forbidden chars removed", `What? A "Name" <here>`, "What-A-Name-here"},
		{"slashes become dashes", "a/b\\c", "a-b-c"},
		{"dash runs collapse", "a -- b", "a-b"},
		{"edges trimmed", "-middle-", "middle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePathComponent(tt.in))
		})
	}
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "Script-References/Torah-Series", SanitizePath("Script References/Torah Series"))
	assert.Equal(t, "", SanitizePath(""))
}
