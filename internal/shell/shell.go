// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package shell implements the line oriented command interpreter that drives
// a running circuit.
//
// Commands:
//
//	set BITS     set the external inputs ('0' and '1' characters, spaces ignored)
//	run N        run N steps, printing the outputs after each step
//	tick [N]     run N steps (default 1) silently
//	out          print the outputs
//	save FILE    save the circuit state to FILE
//	load FILE    load the circuit state from FILE
//	help         print a command summary
//	exit, quit   leave the shell
//
// Command errors are printed and do not stop the shell.
//
package shell

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/cirsim"
	"github.com/pkg/errors"
)

const help = `commands:
  set BITS   set inputs
  run N      run N steps, print outputs after each step
  tick [N]   run N steps
  out        print outputs
  save FILE  save state
  load FILE  load state
  exit       quit
`

// Shell is a command interpreter bound to a circuit.
//
type Shell struct {
	c   *cirsim.Circuit
	out io.Writer
	log *slog.Logger
}

// New returns a new Shell driving circuit c. Command output goes to out.
// If log is nil, slog.Default() is used.
//
func New(c *cirsim.Circuit, out io.Writer, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.Default()
	}
	return &Shell{c: c, out: out, log: log}
}

// Run reads and executes commands from r until an exit command or the end of
// input.
//
func (s *Shell) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		quit, err := s.Exec(sc.Text())
		if err != nil {
			s.log.Debug("command failed", "line", sc.Text(), "error", err)
			fmt.Fprintln(s.out, err)
		}
		if quit {
			return nil
		}
	}
	return errors.WithStack(sc.Err())
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.Errorf("expected 1 argument, got %d", len(args))
	}
	return args[0], nil
}

func steps(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, errors.Errorf("not a number: %s", arg)
	}
	return n, nil
}

// Exec executes a single command line. It reports whether the shell should
// exit. Blank lines and lines starting with '#' are ignored.
//
func (s *Shell) Exec(line string) (quit bool, err error) {
	f := strings.Fields(line)
	if len(f) == 0 || strings.HasPrefix(f[0], "#") {
		return false, nil
	}
	cmd, args := f[0], f[1:]
	s.log.Debug("exec", "cmd", cmd, "args", args, "step", s.c.Steps())

	switch cmd {
	case "set":
		if len(args) == 0 {
			return false, errors.New("expected at least 1 argument, got 0")
		}
		v, err := cirsim.ParseBits(strings.Join(args, ""))
		if err != nil {
			return false, err
		}
		return false, s.c.SetInputs(v)
	case "run":
		a, err := oneArg(args)
		if err != nil {
			return false, err
		}
		n, err := steps(a)
		if err != nil {
			return false, err
		}
		for ; n > 0; n-- {
			s.c.Tick()
			s.printOutputs()
		}
	case "tick":
		n := 1
		if len(args) > 0 {
			a, err := oneArg(args)
			if err != nil {
				return false, err
			}
			if n, err = steps(a); err != nil {
				return false, err
			}
		}
		s.c.Run(n)
	case "out":
		s.printOutputs()
	case "save":
		name, err := oneArg(args)
		if err != nil {
			return false, err
		}
		return false, s.Save(name)
	case "load":
		name, err := oneArg(args)
		if err != nil {
			return false, err
		}
		return false, s.Load(name)
	case "help":
		io.WriteString(s.out, help)
	case "exit", "quit":
		return true, nil
	default:
		return false, errors.Errorf("unknown command: %s", cmd)
	}
	return false, nil
}

func (s *Shell) printOutputs() {
	fmt.Fprintln(s.out, cirsim.FormatBits(s.c.Outputs()))
}

// Save saves the circuit state to the named file.
//
func (s *Shell) Save(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = errors.WithStack(e)
		}
	}()
	if err = s.c.Save(f); err != nil {
		return err
	}
	s.log.Info("state saved", "file", name, "slots", s.c.Size(), "step", s.c.Steps())
	return nil
}

// Load restores the circuit state from the named file.
//
func (s *Shell) Load(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if err = s.c.Load(f); err != nil {
		return errors.Wrap(err, name)
	}
	s.log.Info("state loaded", "file", name, "slots", s.c.Size())
	return nil
}
