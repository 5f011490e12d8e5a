package narration

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

const (
	defaultGoogleVoice = "en-US-Chirp3-HD-Charon"
	// the API rejects inputs over 5000 bytes
	googleChunkLimit = 4800
)

// GoogleEngine synthesises speech with Cloud Text-to-Speech and plays the
// MP3 result through the default audio device. Synthesised audio is cached
// on disk by text and voice.
type GoogleEngine struct {
	client   *texttospeech.Client
	ctx      context.Context
	voice    string
	speed    float64
	volume   float64
	cacheDir string

	mu         sync.Mutex
	playing    atomic.Bool // cleared from the speaker goroutine
	sampleRate beep.SampleRate
	open       []beep.StreamSeekCloser
}

func newGoogleEngine(config Config) (*GoogleEngine, error) {
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	cacheDir := config.CachePath
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "adventure-narration")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	voice := config.Voice
	if voice == "" || voice == "default" {
		voice = defaultGoogleVoice
	}

	return &GoogleEngine{
		client:   client,
		ctx:      ctx,
		voice:    voice,
		speed:    config.Speed,
		volume:   config.Volume,
		cacheDir: cacheDir,
	}, nil
}

func (g *GoogleEngine) Speak(text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	paths, err := g.synthesize(text)
	if err != nil {
		return err
	}

	g.stopLocked()

	var streamers []beep.Streamer
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open cached MP3 %s: %w", path, err)
		}
		streamer, format, err := mp3.Decode(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to decode MP3 %s: %w", path, err)
		}
		if err := g.initSpeaker(format); err != nil {
			streamer.Close()
			return err
		}
		g.open = append(g.open, streamer)
		streamers = append(streamers, beep.Resample(4, format.SampleRate, g.sampleRate, streamer))
	}

	g.playing.Store(true)
	speaker.Play(beep.Seq(append(streamers, beep.Callback(func() {
		g.playing.Store(false)
	}))...))
	return nil
}

// synthesize returns the MP3 chunk files for text, calling the API only for
// chunks not already cached.
func (g *GoogleEngine) synthesize(text string) ([]string, error) {
	hash := md5Sum(text + g.voice)[:12]
	chunks := splitIntoChunks(text, googleChunkLimit)
	paths := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		path := filepath.Join(g.cacheDir, fmt.Sprintf("%s_%d.mp3", hash, i))
		paths = append(paths, path)
		if _, err := os.Stat(path); err == nil {
			continue
		}

		resp, err := g.client.SynthesizeSpeech(g.ctx, g.request(chunk))
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i, err)
		}
		if err := os.WriteFile(path, resp.AudioContent, 0644); err != nil {
			return nil, fmt.Errorf("failed to write MP3 chunk %d to %s: %w", i, path, err)
		}
		logrus.WithFields(logrus.Fields{
			"chunk": i + 1,
			"of":    len(chunks),
			"file":  path,
		}).Debug("cached narration audio")
	}
	return paths, nil
}

func (g *GoogleEngine) request(text string) *texttospeechpb.SynthesizeSpeechRequest {
	audio := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices reject speaking rate and gain
	if !strings.Contains(strings.ToLower(g.voice), "chirp") {
		audio.SpeakingRate = g.speed
		audio.VolumeGainDb = g.volume
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode(g.voice),
			Name:         g.voice,
		},
		AudioConfig: audio,
	}
}

// initSpeaker opens the audio device once, at the rate of the first clip.
func (g *GoogleEngine) initSpeaker(format beep.Format) error {
	if g.sampleRate != 0 {
		return nil
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	g.sampleRate = format.SampleRate
	return nil
}

func (g *GoogleEngine) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
	return nil
}

func (g *GoogleEngine) stopLocked() {
	if g.sampleRate != 0 {
		speaker.Clear()
	}
	for _, s := range g.open {
		s.Close()
	}
	g.open = nil
	g.playing.Store(false)
}

func (g *GoogleEngine) IsPlaying() bool {
	return g.playing.Load()
}

func (g *GoogleEngine) GetAvailableVoices() ([]string, error) {
	resp, err := g.client.ListVoices(g.ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	voices := make([]string, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

// languageCode takes the BCP-47 prefix of a voice name such as
// en-GB-Standard-A.
func languageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

func md5Sum(s string) string {
	h := md5.New()
	io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += limit {
		end := min(i+limit, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
