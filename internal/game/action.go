package game

import "strings"

// Kind classifies a single word of player input.
type Kind int

const (
	Describe Kind = iota
	Help
	Quit
)

func (k Kind) String() string {
	switch k {
	case Help:
		return "help"
	case Quit:
		return "quit"
	default:
		return "describe"
	}
}

// Action is the result of classifying one input word. Term is only set for
// Describe and keeps the word exactly as typed.
type Action struct {
	Kind Kind
	Term string
}

// Parse splits a line on whitespace and classifies every word, keeping
// their order. It never fails: unknown words become Describe actions.
func Parse(line string) []Action {
	words := strings.Fields(line)
	actions := make([]Action, 0, len(words))
	for _, word := range words {
		switch strings.ToLower(word) {
		case "quit":
			actions = append(actions, Action{Kind: Quit})
		case "help":
			actions = append(actions, Action{Kind: Help})
		default:
			actions = append(actions, Action{Kind: Describe, Term: word})
		}
	}
	return actions
}
