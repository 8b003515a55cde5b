package main

import (
	"bytes"
	"testing"

	"github.com/ogre-kun/outliers-calculator/internal/config"
	"github.com/ogre-kun/outliers-calculator/internal/paths"
)

// cliEnv isolates a test from the user's config, history and environment.
func cliEnv(t *testing.T) string {
	t.Helper()
	for _, name := range config.GetSupportedEnvVars() {
		t.Setenv(name, "")
	}
	t.Setenv(paths.HomeEnvVar, t.TempDir())
	return t.TempDir()
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
