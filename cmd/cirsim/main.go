// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command cirsim simulates a circuit.
//
// Usage:
//
//	cirsim [flags] FILE FUNC
//
// cirsim compiles the definitions in FILE, builds function FUNC and reads
// simulation commands from stdin. Type help for a list of commands.
//
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/db47h/cirsim"
	"github.com/db47h/cirsim/hwlib"
	"github.com/db47h/cirsim/internal/shell"
	"github.com/pkg/errors"
)

type config struct {
	state   string
	seed    int64
	verbose bool
	load    string
	stdlib  bool
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] FILE FUNC\n\nflags:\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var cfg config
	flag.StringVar(&cfg.state, "state", "", "override the function's default `state` bits")
	flag.Int64Var(&cfg.seed, "seed", 0, "random `seed` for floating buses (default: current time)")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.StringVar(&cfg.load, "load", "", "load the initial circuit state from `file`")
	flag.BoolVar(&cfg.stdlib, "lib", true, "make hwlib parts available to FILE")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(cfg, flag.Arg(0), flag.Arg(1), log); err != nil {
		log.Error("fatal", "error", err)
		if cfg.verbose {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		}
		os.Exit(1)
	}
}

func compile(cfg config, name string) (*cirsim.Table, error) {
	if !cfg.stdlib {
		return cirsim.CompileFile(name)
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	t, err := hwlib.Compile(string(src))
	return t, errors.Wrap(err, name)
}

func run(cfg config, file, fn string, log *slog.Logger) error {
	start := time.Now()
	t, err := compile(cfg, file)
	if err != nil {
		return err
	}
	log.Debug("compiled", "file", file, "functions", t.Len())

	var state []bool
	if cfg.state != "" {
		if state, err = cirsim.ParseBits(cfg.state); err != nil {
			return errors.Wrap(err, "-state")
		}
	}
	n, err := cirsim.Build(t, fn, state)
	if err != nil {
		return err
	}
	log.Info("built", "func", fn, "slots", n.Size(), "inputs", len(n.Inputs), "outputs", len(n.Outputs),
		"elapsed", time.Since(start))

	seed := cfg.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug("random source", "seed", seed)
	c := cirsim.NewCircuit(n, cirsim.WithSource(rand.NewSource(seed)))

	sh := shell.New(c, os.Stdout, log)
	if cfg.load != "" {
		if err = sh.Load(cfg.load); err != nil {
			return err
		}
	}
	return sh.Run(os.Stdin)
}
