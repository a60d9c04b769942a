package toh

import (
	"fmt"
	"sort"
)

// Catalog is the filtered Table of Hardware. It is not modified after
// NewCatalog returns, so concurrent reads are safe.
type Catalog struct {
	columns []string
	records []Record
}

// NewCatalog keeps the records whose target and subtarget are set, with
// both fields trimmed.
func NewCatalog(columns []string, records []Record) *Catalog {
	c := &Catalog{
		columns: append([]string(nil), columns...),
		records: make([]Record, 0, len(records)),
	}
	for _, record := range records {
		if record == nil || !record.valid() {
			continue
		}
		kept := record.clone()
		kept[FieldTarget] = record.Target()
		kept[FieldSubtarget] = record.Subtarget()
		c.records = append(c.records, kept)
	}
	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

func (c *Catalog) Columns() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.columns...)
}

// Records returns a copy of every record in catalog order.
func (c *Catalog) Records() []Record {
	if c == nil {
		return nil
	}
	out := make([]Record, len(c.records))
	for i, record := range c.records {
		out[i] = record.clone()
	}
	return out
}

// Targets lists the distinct targets in ascending order.
func (c *Catalog) Targets() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, record := range c.records {
		seen[record.Target()] = struct{}{}
	}
	return sortedKeys(seen)
}

// Subtargets lists the distinct subtargets of target in ascending order.
func (c *Catalog) Subtargets(target string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("subtargets for %q: %w", target, ErrEmptyResult)
	}
	seen := make(map[string]struct{})
	for _, record := range c.records {
		if record.Target() == target {
			seen[record.Subtarget()] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("subtargets for %q: %w", target, ErrEmptyResult)
	}
	return sortedKeys(seen), nil
}

// Info returns the first record for target/subtarget, reduced to DisplayFields.
func (c *Catalog) Info(target, subtarget string) (Record, error) {
	if c != nil {
		for _, record := range c.records {
			if record.Target() == target && record.Subtarget() == subtarget {
				return record.project(DisplayFields), nil
			}
		}
	}
	return nil, fmt.Errorf("info for %s/%s: %w", target, subtarget, ErrNotFound)
}

// Devices returns every record for target/subtarget in catalog order.
func (c *Catalog) Devices(target, subtarget string) []Record {
	if c == nil {
		return nil
	}
	var out []Record
	for _, record := range c.records {
		if record.Target() == target && record.Subtarget() == subtarget {
			out = append(out, record.clone())
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
