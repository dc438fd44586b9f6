package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ext = ".csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Option applies a configuration option to the Workbook.
type Option func(*Workbook)

// WithComma sets the field delimiter (default ','). Spreadsheets saved
// with a decimal comma usually export with ';'.
func WithComma(r rune) Option {
	return func(w *Workbook) {
		if r != 0 && r != '"' && r != '\n' && r != '\r' {
			w.comma = r
		}
	}
}

// Workbook is a directory of CSV tables.
type Workbook struct {
	dir   string
	comma rune
}

// NewWorkbook opens a workbook rooted at dir. The directory is created on
// first write.
func NewWorkbook(dir string, opts ...Option) *Workbook {
	w := &Workbook{dir: dir, comma: ','}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workbook) path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.dir, name+ext), nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Exists reports whether the table file is present.
func (w *Workbook) Exists(_ context.Context, name string) bool {
	p, err := w.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Read loads a full table snapshot.
func (w *Workbook) Read(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := w.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	t, err := decode(bytes.TrimPrefix(data, utf8BOM), w.comma)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	t.Name = name
	return t, nil
}

func decode(data []byte, comma rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	t := &Table{}
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			t.Headers = rec
			first = false
			continue
		}
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	t.Normalize()
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Write replaces the table file atomically: the new content goes to a temp
// file in the same directory which is then renamed over the old one.
func (w *Workbook) Write(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := w.path(t.Name)
	if err != nil {
		return err
	}
	t.Normalize()
	return writeAtomic(p, func(out io.Writer) error {
		return encode(out, w.comma, t.Headers, t.Rows)
	})
}

// List returns the table names, sorted.
func (w *Workbook) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(w.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", w.dir, err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ext) || strings.HasPrefix(n, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(n, ext))
	}
	sort.Strings(names)
	return names, nil
}

func encode(out io.Writer, comma rune, headers []string, rows [][]string) error {
	cw := csv.NewWriter(out)
	cw.Comma = comma
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = fill(tmp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
