package dataset

import (
	"fmt"
	"slices"
)

// Dict maps split names to splits, preserving insertion order.
type Dict[T any] struct {
	names  []string
	splits map[string]T
}

// NewDict returns an empty Dict.
func NewDict[T any]() *Dict[T] {
	return &Dict[T]{splits: make(map[string]T)}
}

// Set stores a split, replacing any existing split with the same name.
func (d *Dict[T]) Set(name string, split T) {
	if _, exists := d.splits[name]; !exists {
		d.names = append(d.names, name)
	}
	d.splits[name] = split
}

// Get returns the named split.
func (d *Dict[T]) Get(name string) (T, bool) {
	split, ok := d.splits[name]
	return split, ok
}

// Names returns split names in insertion order.
func (d *Dict[T]) Names() []string {
	return slices.Clone(d.names)
}

// Len returns the number of splits.
func (d *Dict[T]) Len() int {
	return len(d.names)
}

// TransformSplits applies fn to every split in order and collects the results.
// The first error aborts the transformation.
func TransformSplits[T, U any](d *Dict[T], fn func(name string, split T) (U, error)) (*Dict[U], error) {
	out := NewDict[U]()
	for _, name := range d.names {
		next, err := fn(name, d.splits[name])
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", name, err)
		}
		out.Set(name, next)
	}
	return out, nil
}

// RemoveColumns drops the named columns from every split.
func RemoveColumns(d *Dict[*Table], names ...string) (*Dict[*Table], error) {
	return TransformSplits(d, func(_ string, t *Table) (*Table, error) {
		return t.RemoveColumns(names...)
	})
}

// RenameColumn renames a column in every split.
func RenameColumn(d *Dict[*Table], oldName, newName string) (*Dict[*Table], error) {
	return TransformSplits(d, func(_ string, t *Table) (*Table, error) {
		return t.RenameColumn(oldName, newName)
	})
}

// CastAudio re-declares the audio rate of a column in every split.
func CastAudio(d *Dict[*Table], column string, rate int) (*Dict[*Table], error) {
	return TransformSplits(d, func(_ string, t *Table) (*Table, error) {
		return t.CastAudio(column, rate)
	})
}
