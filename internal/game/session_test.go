package game

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"adventure/internal/domain/story"
	"adventure/internal/narration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caveStory() *story.Story {
	return &story.Story{Scenes: map[string]*story.Scene{
		"cave": {
			Name:         "Cave",
			Description:  "A dark cave.",
			IsFirstScene: true,
			Items: map[string]*story.Item{
				"torch": {Name: "torch", Description: "A wooden torch."},
				"key":   {Name: "key", Description: "A rusty key."},
			},
		},
		"forest": {
			Name:        "Forest",
			Description: "Tall pines.",
			Items:       map[string]*story.Item{},
		},
	}}
}

func newTestSession(t *testing.T, input string, opts ...Option) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := NewSession(caveStory(), NewStreamReader(strings.NewReader(input), &out), &out, opts...)
	require.NoError(t, err)
	return s, &out
}

func TestSessionScenarioA(t *testing.T) {
	s, out := newTestSession(t, "help\ntorch\ncave\ntorch quit lamp\nkey\n")

	require.NoError(t, s.Run(context.Background()))

	want := "Cave>Try typing any of the highlighted words\n" +
		"Cave>A wooden torch.\n" +
		"Cave>A dark cave.\n" +
		"Cave>A wooden torch.\nGoodbye!\n\n"
	assert.Equal(t, want, out.String())
}

func TestSessionCRLFInput(t *testing.T) {
	s, out := newTestSession(t, "torch\r\nKEY\r\nquit\r\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "Cave>A wooden torch.\nCave>A rusty key.\nCave>Goodbye!\n", out.String())
}

func TestSessionEmptyLineContinues(t *testing.T) {
	s, out := newTestSession(t, "\n   \nquit\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "Cave>\nCave>\nCave>Goodbye!\n", out.String())
}

func TestSessionSceneNeverChanges(t *testing.T) {
	s, out := newTestSession(t, "forest\nFOREST cave\nquit\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "Cave>\nCave>\nA dark cave.\nCave>Goodbye!\n", out.String())
	assert.Equal(t, "Cave", s.Scene().Name)
}

func TestSessionEndOfInput(t *testing.T) {
	s, out := newTestSession(t, "torch\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "Cave>A wooden torch.\nCave>\n", out.String())
}

func TestSessionHandlesUnterminatedLastLine(t *testing.T) {
	s, out := newTestSession(t, "torch\nKEY")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "Cave>A wooden torch.\nCave>A rusty key.\n", out.String())
}

func TestSessionOutputLinesMatchWords(t *testing.T) {
	s, _ := newTestSession(t, "")

	for _, line := range []string{"torch", "torch key", "a b c", "help quit lamp torch cave"} {
		block, _ := s.Handle(line)
		assert.Len(t, strings.Split(block, "\n"), len(strings.Fields(line)), "line %q", line)
	}
}

func TestSessionHandleQuitStillDescribesLine(t *testing.T) {
	s, _ := newTestSession(t, "")

	block, quit := s.Handle("quit torch")
	assert.True(t, quit)
	assert.Equal(t, "Goodbye!\nA wooden torch.", block)

	block, quit = s.Handle("torch")
	assert.False(t, quit)
	assert.Equal(t, "A wooden torch.", block)
}

func TestNewSessionWithoutStartScene(t *testing.T) {
	st := caveStory()
	st.Scenes["cave"].IsFirstScene = false

	_, err := NewSession(st, NewStreamReader(strings.NewReader(""), io.Discard), io.Discard)

	var noStart *story.NoStartSceneError
	assert.ErrorAs(t, err, &noStart)
}

type scriptedReader struct {
	lines []string
	errs  []error
}

func (r *scriptedReader) ReadLine(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line, err := r.lines[0], r.errs[0]
	r.lines, r.errs = r.lines[1:], r.errs[1:]
	return line, err
}

func (r *scriptedReader) Close() error { return nil }

func TestSessionReadFailureIsReturned(t *testing.T) {
	boom := errors.New("device gone")
	in := &scriptedReader{lines: []string{"torch", ""}, errs: []error{nil, boom}}
	var out bytes.Buffer

	s, err := NewSession(caveStory(), in, &out)
	require.NoError(t, err)

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, "A wooden torch.\n", out.String())
}

func TestSessionInterrupt(t *testing.T) {
	in := &scriptedReader{
		lines: []string{"torch ke", "cave", ""},
		errs:  []error{ErrInterrupt, nil, ErrInterrupt},
	}
	var out bytes.Buffer

	s, err := NewSession(caveStory(), in, &out)
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "A dark cave.\n", out.String())
}

func TestSessionContextCancelled(t *testing.T) {
	s, out := newTestSession(t, "torch\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestSessionNarratesNonEmptyBlocks(t *testing.T) {
	mock := narration.NewMockEngine(narration.Config{})
	s, _ := newTestSession(t, "torch\nlamp\n\ncave quit\n", WithNarrator(mock))

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"A wooden torch.", "A dark cave.\nGoodbye!"}, mock.Spoken())
}

func TestResolve(t *testing.T) {
	scene := caveStory().Scenes["cave"]

	assert.Equal(t, HelpText, Resolve(scene, Action{Kind: Help}))
	assert.Equal(t, GoodbyeText, Resolve(scene, Action{Kind: Quit}))
	assert.Equal(t, "A rusty key.", Resolve(scene, Action{Kind: Describe, Term: "Key"}))
	assert.Equal(t, "", Resolve(scene, Action{Kind: Describe, Term: "lamp"}))
}

func TestNewLineReaderForPipes(t *testing.T) {
	r, err := NewLineReader(caveStory().Scenes["cave"], strings.NewReader("x\n"), io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &StreamReader{}, r)
	assert.NoError(t, r.Close())
}
