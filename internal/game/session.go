package game

import (
	"context"
	"fmt"
	"io"
	"strings"

	"adventure/internal/domain/story"
	"adventure/internal/narration"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Session drives one play-through: prompt, read a line, describe every
// word of it against the current scene and print the result.
type Session struct {
	scene    *story.Scene
	in       LineReader
	out      io.Writer
	narrator narration.Engine
	log      *logrus.Entry
}

type Option func(*Session)

// WithNarrator reads every non-empty block of output aloud.
func WithNarrator(engine narration.Engine) Option {
	return func(s *Session) {
		s.narrator = engine
	}
}

// WithLogger replaces the standard logrus logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession starts at the story's initial scene. The scene never changes
// for the lifetime of the session.
func NewSession(st *story.Story, in LineReader, out io.Writer, opts ...Option) (*Session, error) {
	scene, err := st.InitialScene()
	if err != nil {
		return nil, err
	}

	s := &Session{
		scene: scene,
		in:    in,
		out:   out,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("scene", scene.Name)
	return s, nil
}

func (s *Session) Scene() *story.Scene {
	return s.scene
}

// Prompt is the scene name followed by '>'.
func (s *Session) Prompt() string {
	return s.scene.Name + ">"
}

// Run loops until a line containing quit has been handled, input ends or
// ctx is cancelled. End of input is a normal exit; any other read failure
// is returned.
func (s *Session) Run(ctx context.Context) error {
	s.log.Debug("session started")

	finished := false
	for !finished {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.in.ReadLine(s.Prompt())
		atEOF := false
		switch {
		case err == nil:
		case errors.Is(err, ErrInterrupt):
			if strings.TrimSpace(line) == "" {
				s.log.Debug("interrupted on empty line")
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			atEOF = true
		default:
			return errors.Wrap(err, "read input")
		}

		if atEOF && strings.TrimSpace(line) == "" {
			s.log.Debug("end of input")
			_, err := fmt.Fprintln(s.out)
			return err
		}

		block, quit := s.Handle(line)
		if _, err := fmt.Fprintln(s.out, block); err != nil {
			return errors.Wrap(err, "write output")
		}
		s.narrate(block)

		finished = quit || atEOF
	}

	s.log.Debug("session finished")
	return nil
}

// Handle resolves one line of input into its output block and reports
// whether the line asked to quit.
func (s *Session) Handle(line string) (string, bool) {
	actions := Parse(line)
	lines, quit := ResolveLine(s.scene, actions)

	s.log.WithFields(logrus.Fields{
		"words": len(actions),
		"quit":  quit,
	}).Debug("handled input")

	return strings.Join(lines, "\n"), quit
}

func (s *Session) narrate(block string) {
	if s.narrator == nil || strings.TrimSpace(block) == "" {
		return
	}
	if err := s.narrator.Speak(block); err != nil {
		s.log.WithError(err).Warn("narration failed")
	}
}
