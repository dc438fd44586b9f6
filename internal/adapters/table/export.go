package table

import (
	"context"
	"io"
	"path/filepath"
)

// ExportSuffix is appended to a table name to form its export file name.
const ExportSuffix = "_processed.csv"

// ExportCSV writes headers and rows as standard CSV: a field holding a comma,
// a quote or a line break is quoted, with inner quotes doubled.
func ExportCSV(w io.Writer, headers []string, rows [][]string) error {
	return encode(w, ',', headers, rows)
}

// Exporter writes processed tables into a directory.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Path returns the export file path of a table.
func (e *Exporter) Path(name string) string {
	return filepath.Join(e.dir, name+ExportSuffix)
}

// Export writes one document per table, replacing any earlier export of the
// same table. It returns the written path.
func (e *Exporter) Export(ctx context.Context, name string, headers []string, rows [][]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	p := e.Path(name)
	err := writeAtomic(p, func(w io.Writer) error {
		return ExportCSV(w, headers, rows)
	})
	return p, err
}
