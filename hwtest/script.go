// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"bufio"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/db47h/cirsim"
	"github.com/db47h/cirsim/hwlib"
	"github.com/pkg/errors"
	"golang.org/x/tools/txtar"
)

// RunArchive runs the test script in the named txtar archive.
//
// All files with a .cir suffix are compiled on top of the hwlib parts, in
// archive order. The file named "script" then drives the simulation, one
// command per line:
//
//	build NAME [STATE]   build function NAME, optionally with explicit state bits
//	seed N               seed the random source of the next build
//	set BITS             set the external inputs
//	tick N               run N simulation steps
//	expect BITS          check the external outputs
//	expect-int N [FROM [TO]]
//	                     check outputs FROM..TO (inclusive, lsb first) as an integer
//
// Spaces and underscores within BITS are ignored. Lines starting with '#' are
// comments. The archive comment is logged.
//
func RunArchive(t *testing.T, name string) {
	t.Helper()
	a, err := txtar.ParseFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if c := strings.TrimSpace(string(a.Comment)); c != "" {
		t.Log(c)
	}
	var (
		src    strings.Builder
		script string
		found  bool
	)
	for _, f := range a.Files {
		switch {
		case strings.HasSuffix(f.Name, ".cir"):
			src.Write(f.Data)
			src.WriteByte('\n')
		case f.Name == "script":
			script, found = string(f.Data), true
		}
	}
	if !found {
		t.Fatalf("%s: no script", name)
	}
	tbl, err := hwlib.Compile(src.String())
	if err != nil {
		t.Fatalf("%s: %+v", name, err)
	}
	if err = RunScript(tbl, script); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

type runner struct {
	tbl  *cirsim.Table
	c    *cirsim.Circuit
	seed int64
}

// RunScript runs a test script against table tbl. See RunArchive for the
// script syntax.
//
func RunScript(tbl *cirsim.Table, script string) error {
	r := &runner{tbl: tbl, seed: 1}
	s := bufio.NewScanner(strings.NewReader(script))
	line := 0
	for s.Scan() {
		line++
		f := strings.Fields(s.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if err := r.exec(f[0], f[1:]); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
	return errors.WithStack(s.Err())
}

func bits(args []string) ([]bool, error) {
	return cirsim.ParseBits(strings.Replace(strings.Join(args, ""), "_", "", -1))
}

func (r *runner) exec(cmd string, args []string) error {
	if cmd != "build" && cmd != "seed" && r.c == nil {
		return errors.Errorf("%s: no circuit built", cmd)
	}
	switch cmd {
	case "build":
		if len(args) == 0 {
			return errors.New("build: missing function name")
		}
		var state []bool
		if len(args) > 1 {
			var err error
			if state, err = bits(args[1:]); err != nil {
				return err
			}
		}
		n, err := cirsim.Build(r.tbl, args[0], state)
		if err != nil {
			return err
		}
		r.c = cirsim.NewCircuit(n, cirsim.WithSource(rand.NewSource(r.seed)))
	case "seed":
		if len(args) != 1 {
			return errors.New("seed: expected 1 argument")
		}
		v, err := strconv.ParseInt(args[0], 0, 64)
		if err != nil {
			return errors.WithStack(err)
		}
		r.seed = v
	case "set":
		v, err := bits(args)
		if err != nil {
			return err
		}
		return r.c.SetInputs(v)
	case "tick":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil {
				return errors.WithStack(err)
			}
		}
		r.c.Run(n)
	case "expect":
		v, err := bits(args)
		if err != nil {
			return err
		}
		if exp, got := cirsim.FormatBits(v), cirsim.FormatBits(r.c.Outputs()); exp != got {
			return errors.Errorf("expected outputs %s, got %s", exp, got)
		}
	case "expect-int":
		return r.expectInt(args)
	default:
		return errors.Errorf("unknown command %s", cmd)
	}
	return nil
}

func (r *runner) expectInt(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errors.New("expect-int: expected 1 to 3 arguments")
	}
	var n [3]int64
	out := r.c.Outputs()
	n[2] = int64(len(out) - 1)
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 64)
		if err != nil {
			return errors.WithStack(err)
		}
		n[i] = v
	}
	if len(args) == 2 {
		n[2] = n[1]
	}
	from, to := n[1], n[2]
	if from < 0 || to >= int64(len(out)) || from > to {
		return errors.Errorf("expect-int: invalid output range %d..%d", from, to)
	}
	if got := cirsim.Int64(out[from : to+1]); got != n[0] {
		return errors.Errorf("expected outputs %d..%d = %d, got %d", from, to, n[0], got)
	}
	return nil
}
