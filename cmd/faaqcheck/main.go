// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command faaqcheck stress-tests the faaq queues with concurrent producers
// and consumers and reports any lost, duplicated or reordered element.
//
// Exit status is 0 when every round passes, 1 when a round finds a
// violation, and 2 on usage or setup errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"code.hybscloud.com/faaq"
	"code.hybscloud.com/faaq/internal/harness"
	"code.hybscloud.com/faaq/internal/history"
	"code.hybscloud.com/faaq/internal/logctx"
	"golang.org/x/term"
)

const (
	exitPass      = 0
	exitViolation = 1
	exitUsage     = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, term.IsTerminal(int(os.Stdout.Fd())))
	stop()
	os.Exit(code)
}

type options struct {
	cfg       harness.Config
	rounds    int
	format    harness.Format
	history   string
	verbosity int
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	def := harness.DefaultConfig()
	fs := flag.NewFlagSet("faaqcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	variant := fs.String("variant", string(def.Variant), "queue variant: segmented or flat")
	segmentSize := fs.Int("segment-size", faaq.DefaultSegmentSize, "slots per segment, rounded up to a power of two")
	capacity := fs.Int("capacity", 0, "flat array length (0 sizes it from the workload)")
	producers := fs.Int("producers", def.Producers, "producer goroutines")
	consumers := fs.Int("consumers", def.Consumers, "consumer goroutines")
	items := fs.Int("items", def.Items, "elements per producer")
	rounds := fs.Int("rounds", 1, "rounds to run")
	timeout := fs.Duration("timeout", def.Timeout, "per-round deadline")
	format := fs.String("format", string(harness.FormatAuto), "report format: text, json or auto")
	historyPath := fs.String("history", "", "append each round's report to this SQLite database")
	verbosity := fs.Int("v", logctx.VerbosityQuiet, "log verbosity 0..2")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *rounds < 1 {
		return options{}, fmt.Errorf("rounds %d, must be >= 1", *rounds)
	}
	f, err := harness.ParseFormat(*format)
	if err != nil {
		return options{}, err
	}

	o := options{
		cfg: harness.Config{
			Variant:     harness.Variant(*variant),
			SegmentSize: *segmentSize,
			Capacity:    *capacity,
			Producers:   *producers,
			Consumers:   *consumers,
			Items:       *items,
			Timeout:     *timeout,
		},
		rounds:    *rounds,
		format:    f,
		history:   *historyPath,
		verbosity: *verbosity,
	}
	if err := o.cfg.Validate(); err != nil {
		return options{}, err
	}
	o.cfg = o.cfg.WithDefaults()
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, isTerminal bool) int {
	o, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitPass
	}
	if err != nil {
		fmt.Fprintf(stderr, "faaqcheck: %v\n", err)
		return exitUsage
	}

	ctx = logctx.WithLogger(ctx, logctx.New(stderr, o.verbosity))
	ctx = logctx.WithTag(ctx, "faaqcheck")
	log := logctx.From(ctx)

	var store *history.Store
	if o.history != "" {
		store, err = history.Open(ctx, o.history)
		if err != nil {
			fmt.Fprintf(stderr, "faaqcheck: %v\n", err)
			return exitUsage
		}
		defer store.Close()
	}

	format := o.format.Resolve(isTerminal)
	failed := 0
	for round := 1; round <= o.rounds; round++ {
		r, err := harness.Run(ctx, round, o.cfg)
		if err != nil {
			fmt.Fprintf(stderr, "faaqcheck: round %d: %v\n", round, err)
			return exitUsage
		}
		if err := harness.Encode(stdout, format, r); err != nil {
			fmt.Fprintf(stderr, "faaqcheck: %v\n", err)
			return exitUsage
		}
		if store != nil {
			id, err := store.Record(ctx, r)
			if err != nil {
				fmt.Fprintf(stderr, "faaqcheck: %v\n", err)
				return exitUsage
			}
			log.Debug("report recorded", "round", round, "id", id)
		}
		if !r.Passed {
			failed++
		}
	}

	log.Info("done", "rounds", o.rounds, "failed", failed)
	if failed > 0 {
		return exitViolation
	}
	return exitPass
}
