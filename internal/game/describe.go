package game

import "adventure/internal/domain/story"

const (
	HelpText    = "Try typing any of the highlighted words"
	GoodbyeText = "Goodbye!"
)

// Resolve turns one action into a line of output for the given scene.
func Resolve(scene *story.Scene, action Action) string {
	switch action.Kind {
	case Help:
		return HelpText
	case Quit:
		return GoodbyeText
	default:
		return scene.Describe(action.Term)
	}
}

// ResolveLine resolves every action against the same scene and reports
// whether any of them asked to quit.
func ResolveLine(scene *story.Scene, actions []Action) (lines []string, quit bool) {
	lines = make([]string, 0, len(actions))
	for _, action := range actions {
		if action.Kind == Quit {
			quit = true
		}
		lines = append(lines, Resolve(scene, action))
	}
	return lines, quit
}
