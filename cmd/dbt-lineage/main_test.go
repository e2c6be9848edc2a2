// Package main provides tests for the dbt-lineage CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbt-lineage/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "dbt-lineage") {
		t.Errorf("version output should contain 'dbt-lineage', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"impact", "diff", "serve", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain %q, got: %s", expected, output)
		}
	}
}

func TestUnknownFlagReturnsUsageError(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--not-a-real-flag"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
