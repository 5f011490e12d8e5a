package game

import (
	"bufio"
	"io"
	"os"

	"adventure/internal/cli/scheme/colours"
	"adventure/internal/domain/story"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ErrInterrupt is returned by a LineReader when the player pressed Ctrl+C.
var ErrInterrupt = errors.New("interrupted")

// LineReader prompts for and reads one line of player input. At end of
// input it returns io.EOF, possibly together with a final unterminated line.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// StreamReader reads lines from any io.Reader and writes prompts verbatim.
type StreamReader struct {
	r   *bufio.Reader
	out io.Writer
}

func NewStreamReader(in io.Reader, out io.Writer) *StreamReader {
	return &StreamReader{r: bufio.NewReader(in), out: out}
}

func (s *StreamReader) ReadLine(prompt string) (string, error) {
	if _, err := io.WriteString(s.out, prompt); err != nil {
		return "", errors.Wrap(err, "write prompt")
	}
	line, err := s.r.ReadString('\n')
	// a CRLF line keeps its '\r'; Parse splits on whitespace and drops it
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line, err
}

func (s *StreamReader) Close() error {
	return nil
}

// TerminalReader is a readline based editor used when stdin is a terminal.
type TerminalReader struct {
	rl *readline.Instance
}

// NewTerminalReader offers completion for the help and quit commands, the
// scene name and the keys of its items.
func NewTerminalReader(scene *story.Scene) (*TerminalReader, error) {
	words := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem(scene.Name),
	}
	for _, key := range scene.ItemKeys() {
		words = append(words, readline.PcItem(key))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		AutoComplete:      readline.NewPrefixCompleter(words...),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
		HistoryLimit:      500,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init line editor")
	}
	return &TerminalReader{rl: rl}, nil
}

func (t *TerminalReader) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(colours.Prompt.Sprint(prompt))
	line, err := t.rl.Readline()
	if err == readline.ErrInterrupt {
		return line, ErrInterrupt
	}
	return line, err
}

func (t *TerminalReader) Close() error {
	return t.rl.Close()
}

// NewLineReader picks the line editor when in and out are the terminal and
// a plain stream reader otherwise.
func NewLineReader(scene *story.Scene, in io.Reader, out io.Writer) (LineReader, error) {
	if isTerminal(in) && isTerminal(out) {
		return NewTerminalReader(scene)
	}
	return NewStreamReader(in, out), nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
