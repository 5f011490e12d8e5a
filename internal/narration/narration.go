// Package narration reads game output aloud.
package narration

type Config struct {
	Type      string
	Voice     string
	Speed     float64
	Volume    float64
	CachePath string
}

// Engine speaks text. Speak returns once playback has started; Stop cuts
// any playback in progress.
type Engine interface {
	Speak(text string) error
	Stop() error
	IsPlaying() bool
	GetAvailableVoices() ([]string, error)
}
