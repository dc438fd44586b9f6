package table

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for workbook access.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrMissingColumns = errors.New("required columns missing")
	ErrInvalidName    = errors.New("invalid table name")
)

// SchemaError lists the logical fields that no header resolved to.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s: %s", e.Table, ErrMissingColumns, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match ErrMissingColumns.
func (e *SchemaError) Is(target error) bool {
	return target == ErrMissingColumns
}
