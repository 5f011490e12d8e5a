package story

import "fmt"

// LoadError reports a story source that is missing, unreadable or does not
// have the shape of a story.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to load story: %v", e.Err)
	}
	return fmt.Sprintf("failed to load story %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NoStartSceneError reports a story in which no scene is flagged with
// is_first_scene.
type NoStartSceneError struct {
	Scenes int
}

func (e *NoStartSceneError) Error() string {
	return fmt.Sprintf("no starting scene among %d scenes: set is_first_scene on one of them", e.Scenes)
}
