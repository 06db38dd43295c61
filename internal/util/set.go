// Package util contains small generic helpers shared by the grammar stages.
package util

import (
	"fmt"
	"sort"
	"strings"
)

// KeySet is a map[E comparable]bool used as a set of unique elements.
type KeySet[E comparable] map[E]bool

// StringSet is a KeySet of strings. It is used for sets of variable names.
type StringSet = KeySet[string]

// NewKeySet creates a KeySet holding every key of the given maps.
func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// NewStringSet creates a StringSet holding every key of the given maps.
func NewStringSet(of ...map[string]bool) StringSet {
	return NewKeySet[string](of...)
}

func (s KeySet[E]) Add(value E) {
	s[value] = true
}

func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

// StringOrdered shows the contents of the set. Items are guaranteed to be
// alphabetized by their %v representation.
func (s KeySet[E]) StringOrdered() string {
	convs := make([]string, 0, len(s))
	for k := range s {
		convs = append(convs, fmt.Sprintf("%v", k))
	}
	sort.Strings(convs)

	return "{" + strings.Join(convs, ", ") + "}"
}
