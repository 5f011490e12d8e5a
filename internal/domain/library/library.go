package library

import (
	"context"
	"os"
	"strings"

	"adventure/internal/domain/story"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StoryLibrary opens stories from local files or, through a StoryCache,
// from http(s) URLs.
type StoryLibrary struct {
	cache *StoryCache
}

func NewStoryLibrary(cache *StoryCache) *StoryLibrary {
	return &StoryLibrary{cache: cache}
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Open reads and decodes the story at source. Every failure is a
// *story.LoadError.
func (l *StoryLibrary) Open(ctx context.Context, source string) (*story.Story, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, &story.LoadError{Source: source, Err: err}
	}

	s, err := story.Parse(data, source)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"source": source,
		"scenes": len(s.Scenes),
	}).Info("Loaded story")
	return s, nil
}

func (l *StoryLibrary) read(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		if l.cache == nil {
			return nil, errors.New("remote story sources need a cache")
		}
		return l.cache.Get(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(err, "read story file")
	}
	return data, nil
}
