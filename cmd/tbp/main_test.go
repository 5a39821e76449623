package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"debug level", "debug", false},
		{"info level", "info", false},
		{"warn level", "warn", false},
		{"error level", "error", false},
		{"uppercase accepted", "DEBUG", false},
		{"invalid level", "verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(cli.NewApp(), set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestExtractCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "tbp",
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Action: func(*cli.Context) error { return nil },
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Required: true},
					&cli.StringFlag{Name: "output", Required: true},
				},
			},
		},
	}

	t.Run("input is required", func(t *testing.T) {
		err := app.Run([]string{"tbp", "extract", "--output", "/tmp/out"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("output is required", func(t *testing.T) {
		err := app.Run([]string{"tbp", "extract", "--input", "/tmp/in"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output")
	})
}

func TestIngestCommandValidation(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("db", "", "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	err := ingestCommand(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}

func TestQueryCommandValidation(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("db", "", "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	err := queryCommand(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}
