package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Action
	}{
		{
			name: "empty line",
			line: "",
			want: []Action{},
		},
		{
			name: "whitespace only",
			line: " \t  \n",
			want: []Action{},
		},
		{
			name: "commands in any case",
			line: "QUIT Quit quit HeLp",
			want: []Action{{Kind: Quit}, {Kind: Quit}, {Kind: Quit}, {Kind: Help}},
		},
		{
			name: "describe keeps the raw word",
			line: "  Torch\t\tKEY  ",
			want: []Action{{Kind: Describe, Term: "Torch"}, {Kind: Describe, Term: "KEY"}},
		},
		{
			name: "mixed order is preserved",
			line: "torch quit lamp",
			want: []Action{{Kind: Describe, Term: "torch"}, {Kind: Quit}, {Kind: Describe, Term: "lamp"}},
		},
		{
			name: "commands are whole words only",
			line: "quitter helpful",
			want: []Action{{Kind: Describe, Term: "quitter"}, {Kind: Describe, Term: "helpful"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.line))
		})
	}
}

func TestParseCountMatchesWords(t *testing.T) {
	lines := []string{
		"a",
		"a b c d e f",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\nmixed",
		"help help quit x",
	}
	for _, line := range lines {
		assert.Len(t, Parse(line), len(strings.Fields(line)), "line %q", line)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "describe", Describe.String())
	assert.Equal(t, "help", Help.String())
	assert.Equal(t, "quit", Quit.String())
}
