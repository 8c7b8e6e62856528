// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Save writes the current state of all slots to w as one '0' or '1' byte per
// slot, in slot order.
//
func (c *Circuit) Save(w io.Writer) error {
	_, err := io.WriteString(w, FormatBits(c.s0))
	return errors.Wrap(err, "save state")
}

// Load restores a state written by Save. Both the current and previous frames
// are overwritten, so the next step starts from a consistent snapshot.
//
// The input must hold exactly one byte per slot. At most one byte more than
// the slot count is read from r. On error, the circuit is left unchanged.
//
func (c *Circuit) Load(r io.Reader) error {
	// one extra byte is enough to detect oversized input.
	buf, err := io.ReadAll(io.LimitReader(r, int64(len(c.s0))+1))
	if err != nil {
		return errors.Wrap(err, "load state")
	}
	if len(buf) != len(c.s0) {
		return errors.Wrapf(ErrStateSize, "got %d bytes, expected %d", len(buf), len(c.s0))
	}
	for i, b := range buf {
		c.s0[i] = b == '1'
	}
	copy(c.s1, c.s0)
	return nil
}

// ParseBits parses a string of '0' and '1' characters.
//
func ParseBits(s string) ([]bool, error) {
	r := make([]bool, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			r[i] = true
		default:
			return nil, errors.Errorf("invalid bit value %q at position %d", s[i], i)
		}
	}
	return r, nil
}

// FormatBits returns bits as a string of '0' and '1' characters.
//
func FormatBits(bits []bool) string {
	var b strings.Builder
	b.Grow(len(bits))
	for _, v := range bits {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Int64 returns bits as an int64. Bit 0 is lsb.
//
func Int64(bits []bool) int64 {
	var out int64
	for bit, v := range bits {
		if v {
			out |= 1 << uint(bit)
		}
	}
	return out
}

// SetInt64 sets bits to the given int64 value. Bit 0 is lsb.
//
func SetInt64(bits []bool, v int64) {
	for bit := range bits {
		bits[bit] = v&(1<<uint(bit)) != 0
	}
}
