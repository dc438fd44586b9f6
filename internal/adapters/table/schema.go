package table

import "strings"

// Field is one logical column. Variants are tried in order; with Fold set
// the match ignores case and surrounding spaces, otherwise it is exact.
type Field struct {
	Name     string
	Variants []string
	Required bool
	Fold     bool
}

// Exact declares a field matched by its exact header.
func Exact(name string, required bool) Field {
	return Field{Name: name, Variants: []string{name}, Required: required}
}

// Folded declares a case-insensitive field with header variants.
func Folded(name string, required bool, variants ...string) Field {
	return Field{Name: name, Variants: variants, Required: required, Fold: true}
}

// Schema maps logical field names to column positions.
type Schema struct {
	idx map[string]int
}

// Resolve locates every field in headers. Missing required fields are
// reported together in a *SchemaError.
func Resolve(tableName string, headers []string, fields ...Field) (Schema, error) {
	s := Schema{idx: make(map[string]int, len(fields))}
	var missing []string
	for _, f := range fields {
		i := find(headers, f)
		if i < 0 {
			if f.Required {
				missing = append(missing, f.Name)
			}
			continue
		}
		s.idx[f.Name] = i
	}
	if len(missing) > 0 {
		return s, &SchemaError{Table: tableName, Missing: missing}
	}
	return s, nil
}

func find(headers []string, f Field) int {
	variants := f.Variants
	if len(variants) == 0 {
		variants = []string{f.Name}
	}
	for _, v := range variants {
		for i, h := range headers {
			if f.Fold {
				if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(v)) {
					return i
				}
			} else if h == v {
				return i
			}
		}
	}
	return -1
}

// Has reports whether the field resolved.
func (s Schema) Has(name string) bool {
	_, ok := s.idx[name]
	return ok
}

// Index returns the column of a field, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.idx[name]; ok {
		return i
	}
	return -1
}

// Get returns the field's cell in row, or "" when unresolved.
func (s Schema) Get(row []string, name string) string {
	i := s.Index(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
