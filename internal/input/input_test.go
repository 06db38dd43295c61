package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DirectReader_ReadLine(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		allowBlank bool
		keepSpace  bool
		expect     []string
	}{
		{
			name:   "skips blank lines",
			input:  "one\n\n   \ntwo\n",
			expect: []string{"one", "two"},
		},
		{
			name:       "blank lines allowed",
			input:      "one\n\ntwo",
			allowBlank: true,
			expect:     []string{"one", "", "two"},
		},
		{
			name:   "trims space and CRLF",
			input:  "  a b \r\n",
			expect: []string{"a b"},
		},
		{
			name:       "keeps space",
			input:      " a \r\n \n",
			allowBlank: true,
			keepSpace:  true,
			expect:     []string{" a ", " "},
		},
		{
			name:   "last line without newline",
			input:  "last",
			expect: []string{"last"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			r := NewDirectReader(strings.NewReader(tc.input), nil)
			r.AllowBlank(tc.allowBlank)
			r.KeepSpace(tc.keepSpace)

			var actual []string
			for {
				line, err := r.ReadLine()
				if err == io.EOF {
					break
				}
				if !assert.NoError(err) {
					return
				}
				actual = append(actual, line)
			}

			assert.Equal(tc.expect, actual)
			assert.NoError(r.Close())
		})
	}
}

func Test_DirectReader_Prompt(t *testing.T) {
	assert := assert.New(t)

	var out strings.Builder
	r := NewDirectReader(strings.NewReader("\nx\n"), &out)
	r.SetPrompt("? ")

	line, err := r.ReadLine()
	assert.NoError(err)
	assert.Equal("x", line)

	// the skipped blank line prompts again
	assert.Equal("? ? ", out.String())
}
