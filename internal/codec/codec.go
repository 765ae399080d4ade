// Package codec reads and writes result files in the format selected by
// the binary mode bit: msgpack when it is on, TOML text otherwise.
package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"

	"sapec/internal/mode"
)

// Format is a result file encoding.
type Format uint8

const (
	Text Format = iota
	Binary
)

func (f Format) String() string {
	if f == Binary {
		return "binary"
	}
	return "text"
}

// Ext returns the conventional file extension.
func (f Format) Ext() string {
	if f == Binary {
		return ".mp"
	}
	return ".toml"
}

// FormatFor picks the format for the current mode.
func FormatFor(flags mode.Flags) Format {
	if flags.Binary() {
		return Binary
	}
	return Text
}

// Encode writes v to w. Text output needs v to be a struct or a map.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case Binary:
		return msgpack.NewEncoder(w).Encode(v)
	case Text:
		return toml.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("codec: unknown format %d", f)
}

// Decode reads one value from r into v.
func Decode(r io.Reader, f Format, v any) error {
	switch f {
	case Binary:
		return msgpack.NewDecoder(r).Decode(v)
	case Text:
		_, err := toml.NewDecoder(r).Decode(v)
		return err
	}
	return fmt.Errorf("codec: unknown format %d", f)
}

// WriteFile encodes v into path, replacing it atomically.
func WriteFile(path string, f Format, v any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, f, v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile decodes path into v.
func ReadFile(path string, f Format, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := Decode(file, f, v); err != nil {
		return fmt.Errorf("decode %s %s: %w", f, path, err)
	}
	return nil
}
