package adventure

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"adventure/internal/cli/scheme/colours"
	"adventure/internal/config"
	"adventure/internal/domain/library"
	"adventure/internal/domain/story"
	"adventure/internal/game"
	"adventure/internal/narration"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Adventure is the command line application: it loads the configured story
// and either plays it or reports on it.
type Adventure struct {
	settings config.Settings
	cache    *library.StoryCache
	library  *library.StoryLibrary

	// Stdin feeds the game; tests replace it.
	Stdin io.Reader

	mu       sync.Mutex
	narrator narration.Engine

	ctx    context.Context
	Cancel context.CancelFunc
}

func NewAdventure(settings config.Settings) *Adventure {
	cache := library.NewStoryCache(settings.CacheDir, settings.CacheMaxAge, settings.FetchTimeout)
	ctx, cancel := context.WithCancel(context.Background())

	return &Adventure{
		settings: settings,
		cache:    cache,
		library:  library.NewStoryLibrary(cache),
		Stdin:    os.Stdin,
		ctx:      ctx,
		Cancel:   cancel,
	}
}

func (a *Adventure) loadStory() (*story.Story, error) {
	return a.library.Open(a.ctx, a.settings.StorySource)
}

// Play runs the game loop on stdin and stdout.
func (a *Adventure) Play(cmd *cobra.Command, args []string) error {
	st, err := a.loadStory()
	if err != nil {
		return err
	}
	scene, err := st.InitialScene()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in, err := game.NewLineReader(scene, a.Stdin, out)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := []game.Option{}
	if engine := a.startNarrator(); engine != nil {
		opts = append(opts, game.WithNarrator(engine))
	}

	session, err := game.NewSession(st, in, out, opts...)
	if err != nil {
		return err
	}

	err = session.Run(a.ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startNarrator builds the configured narration engine. Narration is
// optional: a failure only turns it off.
func (a *Adventure) startNarrator() narration.Engine {
	engine, err := narration.NewEngine(a.settings.Narration)
	if err != nil {
		logrus.WithError(err).WithField("engine", a.settings.Narration.Type).Warn("narration disabled")
		return nil
	}
	if engine == nil {
		return nil
	}

	a.mu.Lock()
	a.narrator = engine
	a.mu.Unlock()
	return engine
}

// StopNarration cuts off any narration still playing.
func (a *Adventure) StopNarration() {
	a.mu.Lock()
	engine := a.narrator
	a.mu.Unlock()

	if engine == nil {
		return
	}
	if err := engine.Stop(); err != nil {
		logrus.WithError(err).Warn("failed to stop narration")
	}
}

// ListScenes prints every scene with its items.
func (a *Adventure) ListScenes(cmd *cobra.Command, args []string) error {
	st, err := a.loadStory()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	colours.Heading.Fprintln(out, "📚 Scenes")
	fmt.Fprintln(out)

	for i, key := range st.SceneKeys() {
		scene := st.Scenes[key]
		fmt.Fprintf(out, "  %d. ", i+1)
		colours.Scene.Fprint(out, scene.Name)
		if scene.IsFirstScene {
			colours.Success.Fprint(out, " (start)")
		}
		fmt.Fprintf(out, "\n     %s\n", scene.Description)
		for _, itemKey := range scene.ItemKeys() {
			fmt.Fprint(out, "     • ")
			colours.Keyword.Fprint(out, itemKey)
			fmt.Fprintf(out, ": %s\n", scene.Items[itemKey].Description)
		}
		fmt.Fprintln(out)
	}
	return nil
}

// Validate loads the story and checks that it has a starting scene.
func (a *Adventure) Validate(cmd *cobra.Command, args []string) error {
	st, err := a.loadStory()
	if err != nil {
		return err
	}
	scene, err := st.InitialScene()
	if err != nil {
		return err
	}

	items := 0
	for _, s := range st.Scenes {
		items += len(s.Items)
	}

	out := cmd.OutOrStdout()
	colours.Success.Fprintf(out, "✅ %s is valid\n", a.settings.StorySource)
	colours.Info.Fprintf(out, "   %d scenes, %d items, starting in %s\n", len(st.Scenes), items, scene.Name)
	return nil
}

// Export writes the loaded story back out as YAML.
func (a *Adventure) Export(cmd *cobra.Command, args []string) error {
	st, err := a.loadStory()
	if err != nil {
		return err
	}
	return st.Encode(cmd.OutOrStdout())
}

// ShowCacheStatus reports on the cached copy of a remote story source.
func (a *Adventure) ShowCacheStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	colours.Heading.Fprintln(out, "📊 Story Cache Status")

	if !library.IsRemote(a.settings.StorySource) {
		colours.Info.Fprintf(out, "💡 %s is a local file, nothing is cached\n", a.settings.StorySource)
		return nil
	}

	info := a.cache.Info(a.settings.StorySource)
	if !info.Exists {
		colours.Warning.Fprintln(out, "❌ Cache does not exist")
		return nil
	}

	colours.Success.Fprintln(out, "✅ Cache exists")
	colours.Info.Fprintf(out, "📁 Location: %s\n", info.Path)
	colours.Info.Fprintf(out, "📏 Size: %d bytes\n", info.Size)
	colours.Info.Fprintf(out, "🕐 Last modified: %s\n", info.LastModified.Format("2006-01-02 15:04:05"))
	if info.Fresh {
		colours.Success.Fprintln(out, "🔄 Cache is fresh")
	} else {
		colours.Warning.Fprintln(out, "⏰ Cache is stale")
	}
	colours.Info.Fprintf(out, "⏳ Max age: %.1f hours\n", info.MaxAge.Hours())
	return nil
}

// ClearCache removes every cached remote story.
func (a *Adventure) ClearCache(cmd *cobra.Command, args []string) error {
	if err := a.cache.ClearCache(); err != nil {
		return err
	}
	colours.Success.Fprintln(cmd.OutOrStdout(), "🧹 Story cache cleared")
	return nil
}

// ListEngines prints the narration engines usable on this machine and marks
// the configured one.
func (a *Adventure) ListEngines(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	colours.Heading.Fprintln(out, "🔊 Narration Engines")

	configured := a.settings.Narration.Type
	if configured == "" {
		configured = narration.EngineTypeNone.String()
	}
	for _, engine := range narration.GetAvailableEngines() {
		fmt.Fprint(out, "  • ")
		colours.Keyword.Fprint(out, engine)
		if engine.String() == configured {
			colours.Success.Fprint(out, " (configured)")
		}
		fmt.Fprintln(out)
	}
	return nil
}

// ListVoices prints the voices offered by the configured narration engine.
func (a *Adventure) ListVoices(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	engine, err := narration.NewEngine(a.settings.Narration)
	if err != nil {
		return errors.Wrap(err, "start narration engine")
	}
	if engine == nil {
		colours.Info.Fprintln(out, "💡 Narration is off, set narration.engine to list voices")
		return nil
	}
	defer engine.Stop()

	voices, err := engine.GetAvailableVoices()
	if err != nil {
		return errors.Wrap(err, "list voices")
	}

	colours.Heading.Fprintf(out, "🗣️ Voices (%d)\n", len(voices))
	for _, voice := range voices {
		fmt.Fprint(out, "  • ")
		if voice == a.settings.Narration.Voice {
			colours.Success.Fprintln(out, voice)
			continue
		}
		fmt.Fprintln(out, voice)
	}
	return nil
}
