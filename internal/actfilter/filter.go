package actfilter

import (
	"errors"
	"strings"

	"github.com/dbantje/premise/pkg/lci"
)

// ErrEmptyFilter is returned when Apply is called with an include spec
// carrying no patterns. Filtering with no criterion is a config error, not
// an empty result.
var ErrEmptyFilter = errors.New("filter spec must not be empty")

// Options selects the match mode per call. The default is substring
// containment, which is what the shipped filter definitions assume.
type Options struct {
	FilterExact bool
	MaskExact   bool
}

// Apply returns the activities matching the include spec and not matching
// the exclude spec. Patterns under one field are OR-combined, fields are
// AND-combined, and the exclude side is a set subtraction: one matching
// exclude pattern on any field removes the record. Apply never mutates the
// database and its result does not depend on record order.
func Apply(db lci.Database, include, exclude Spec, opts Options) (lci.Database, error) {
	if include.Empty() {
		return nil, ErrEmptyFilter
	}

	var out lci.Database
	for _, act := range db {
		if !matchesAllFields(act, include, opts.FilterExact) {
			continue
		}
		if matchesAnyPattern(act, exclude, opts.MaskExact) {
			continue
		}
		out = append(out, act)
	}
	return out, nil
}

// One applies a definition with default options.
func One(db lci.Database, def Definition) (lci.Database, error) {
	return Apply(db, def.Include, def.Exclude, Options{})
}

func matchesAllFields(act lci.Activity, spec Spec, exact bool) bool {
	for _, field := range spec.Fields() {
		value := act.Field(field)
		if !anyPatternMatches(value, spec.Patterns(field), exact) {
			return false
		}
	}
	return true
}

func matchesAnyPattern(act lci.Activity, spec Spec, exact bool) bool {
	for _, field := range spec.Fields() {
		if anyPatternMatches(act.Field(field), spec.Patterns(field), exact) {
			return true
		}
	}
	return false
}

func anyPatternMatches(value string, patterns []string, exact bool) bool {
	for _, pattern := range patterns {
		if exact {
			if value == pattern {
				return true
			}
			continue
		}
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}
