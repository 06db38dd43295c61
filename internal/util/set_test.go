package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KeySet_StringOrdered(t *testing.T) {
	testCases := []struct {
		name   string
		input  []string
		expect string
	}{
		{name: "empty", input: nil, expect: "{}"},
		{name: "one", input: []string{"S"}, expect: "{S}"},
		{name: "several, unordered", input: []string{"T", "E'", "E"}, expect: "{E, E', T}"},
		{name: "duplicates", input: []string{"A", "A", "B"}, expect: "{A, B}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			s := NewStringSet()
			for _, v := range tc.input {
				s.Add(v)
			}

			assert.Equal(tc.expect, s.StringOrdered())
		})
	}
}

func Test_NewStringSet(t *testing.T) {
	assert := assert.New(t)

	a := map[string]bool{"A": true}
	s := NewStringSet(a, map[string]bool{"B": true})
	s.Add("C")

	assert.True(s.Has("A"))
	assert.True(s.Has("B"))
	assert.True(s.Has("C"))
	assert.False(s.Has("D"))

	// the source maps are not shared
	assert.False(a["C"])
}
