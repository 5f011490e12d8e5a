package adventure

import "github.com/spf13/cobra"

// Commands builds the command tree. The root command plays the story.
func (a *Adventure) Commands() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adventure",
		Short: "🕯️ Explore a story one word at a time",
		Long: `
Adventure loads a story of scenes and items and lets you explore it by
typing words. Type the name of the scene or of anything in it to read its
description, "help" for a hint and "quit" to leave.
		`,
		Args:          cobra.NoArgs,
		RunE:          a.Play,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "📋 List the scenes and items of the story",
		Args:  cobra.NoArgs,
		RunE:  a.ListScenes,
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "✅ Check that the story loads and has a starting scene",
		Args:  cobra.NoArgs,
		RunE:  a.Validate,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "📤 Print the loaded story as YAML",
		Args:  cobra.NoArgs,
		RunE:  a.Export,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "🗄️ Manage the cache of remote stories",
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "📊 Show cache status",
			Args:  cobra.NoArgs,
			RunE:  a.ShowCacheStatus,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "🧹 Remove cached stories",
			Args:  cobra.NoArgs,
			RunE:  a.ClearCache,
		},
	)

	narrationCmd := &cobra.Command{
		Use:   "narration",
		Short: "🔊 Inspect read-aloud support",
	}
	narrationCmd.AddCommand(
		&cobra.Command{
			Use:   "engines",
			Short: "List the narration engines available here",
			Args:  cobra.NoArgs,
			RunE:  a.ListEngines,
		},
		&cobra.Command{
			Use:   "voices",
			Short: "List the voices of the configured engine",
			Args:  cobra.NoArgs,
			RunE:  a.ListVoices,
		},
	)

	rootCmd.AddCommand(scenesCmd, validateCmd, exportCmd, cacheCmd, narrationCmd)
	return rootCmd
}
