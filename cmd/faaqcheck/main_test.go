// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"code.hybscloud.com/faaq"
	"code.hybscloud.com/faaq/internal/harness"
	"code.hybscloud.com/faaq/internal/history"
)

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"positional", []string{"extra"}},
		{"bad variant", []string{"-variant", "ring"}},
		{"bad format", []string{"-format", "xml"}},
		{"zero rounds", []string{"-rounds", "0"}},
		{"zero producers", []string{"-producers", "0"}},
		{"zero segment size", []string{"-segment-size", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(context.Background(), tt.args, &stdout, &stderr, false); code != exitUsage {
				t.Fatalf("exit code: got %d, want %d (stderr %q)", code, exitUsage, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Fatalf("stdout not empty: %q", stdout.String())
			}
		})
	}
}

func TestHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-h"}, &stdout, &stderr, false); code != exitPass {
		t.Fatalf("exit code: got %d, want %d", code, exitPass)
	}
	if !strings.Contains(stderr.String(), "-segment-size") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
}

func TestParseArgsDefaults(t *testing.T) {
	o, err := parseArgs(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.cfg.Variant != harness.VariantSegmented || o.cfg.SegmentSize != faaq.DefaultSegmentSize {
		t.Fatalf("defaults: %+v", o.cfg)
	}
	if o.rounds != 1 || o.format != harness.FormatAuto || o.history != "" {
		t.Fatalf("defaults: %+v", o)
	}
}

func TestRunRounds(t *testing.T) {
	if faaq.RaceEnabled {
		t.Skip("skip: concurrent rounds")
	}
	db := filepath.Join(t.TempDir(), "runs.db")
	args := []string{
		"-variant", "segmented", "-segment-size", "2",
		"-producers", "2", "-consumers", "2", "-items", "500",
		"-rounds", "3", "-format", "auto", "-history", db,
	}
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), args, &stdout, &stderr, true); code != exitPass {
		t.Fatalf("exit code: got %d, want %d\nstdout:\n%s\nstderr:\n%s", code, exitPass, stdout.String(), stderr.String())
	}
	if n := strings.Count(stdout.String(), " PASS segmented "); n != 3 {
		t.Fatalf("text reports: got %d PASS lines\n%s", n, stdout.String())
	}

	s, err := history.Open(context.Background(), db)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer s.Close()
	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 || got[0].Round != 3 {
		t.Fatalf("history: got %d reports", len(got))
	}
}

func TestRunViolation(t *testing.T) {
	if faaq.RaceEnabled {
		t.Skip("skip: concurrent rounds")
	}
	args := []string{
		"-variant", "flat", "-capacity", "8",
		"-producers", "1", "-consumers", "1", "-items", "64",
		"-format", "json",
	}
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), args, &stdout, &stderr, true); code != exitViolation {
		t.Fatalf("exit code: got %d, want %d\nstderr:\n%s", code, exitViolation, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"passed":false`) {
		t.Fatalf("json report: %s", stdout.String())
	}
}
