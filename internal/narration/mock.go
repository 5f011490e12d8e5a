package narration

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// MockEngine records what it was asked to say instead of playing audio.
type MockEngine struct {
	mu     sync.Mutex
	voice  string
	spoken []string
}

func NewMockEngine(c Config) *MockEngine {
	voice := c.Voice
	if voice == "" {
		voice = "mock-voice"
	}
	return &MockEngine{voice: voice}
}

func (m *MockEngine) Speak(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.spoken = append(m.spoken, text)
	logrus.WithFields(logrus.Fields{
		"voice": m.voice,
		"chars": len(text),
	}).Debug("narrating (mock)")
	return nil
}

// Spoken returns everything passed to Speak so far.
func (m *MockEngine) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}

func (m *MockEngine) Stop() error {
	return nil
}

func (m *MockEngine) IsPlaying() bool {
	return false
}

func (m *MockEngine) GetAvailableVoices() ([]string, error) {
	return []string{"mock-voice"}, nil
}
