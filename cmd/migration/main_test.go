package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
)

func TestParseSteps(t *testing.T) {
	t.Parallel()

	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("default steps: got=%d err=%v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("explicit steps: got=%d err=%v", got, err)
	}
	for _, raw := range []string{"0", "-1", "abc"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	t.Parallel()

	if got, err := parseVersion("1771776100"); err != nil || got != 1771776100 {
		t.Fatalf("parse version: got=%d err=%v", got, err)
	}
	if _, err := parseVersion("-5"); err == nil {
		t.Fatalf("expected negative version to fail")
	}
	if got, err := parseTarget("42"); err != nil || got != 42 {
		t.Fatalf("parse target: got=%d err=%v", got, err)
	}
	if _, err := parseTarget("x"); err == nil {
		t.Fatalf("expected invalid target to fail")
	}
}

func TestResolveMigrationsDir_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", dir)

	got, err := resolveMigrationsDir()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Fatalf("unexpected dir: got=%q want=%q", got, want)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	var stdout bytes.Buffer
	logger := logging.NewNop()

	if code := run(nil, &stdout, logger); code != exitUsage {
		t.Fatalf("unexpected exit code without args: got=%d want=%d", code, exitUsage)
	}
	if code := run([]string{"sideways"}, &stdout, logger); code != exitUsage {
		t.Fatalf("unexpected exit code for unknown command: got=%d want=%d", code, exitUsage)
	}
}

func TestRun_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_URL", "")

	var stdout bytes.Buffer
	if code := run([]string{"up"}, &stdout, logging.NewNop()); code != exitError {
		t.Fatalf("unexpected exit code: got=%d want=%d", code, exitError)
	}
}
