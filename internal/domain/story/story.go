package story

import "strings"

// Item is a describable object that belongs to exactly one scene.
type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Scene is a named location with a description and zero or more items.
type Scene struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Items        map[string]*Item `yaml:"items"`
	IsFirstScene bool             `yaml:"is_first_scene"`

	// item keys in document order
	itemOrder []string
}

// Story is the complete set of scenes loaded from a story source.
type Story struct {
	Scenes map[string]*Scene `yaml:"scenes"`

	// scene keys in document order
	sceneOrder []string
}

// InitialScene returns the first scene, in document order, flagged as the
// starting scene.
func (s *Story) InitialScene() (*Scene, error) {
	for _, key := range s.SceneKeys() {
		if scene := s.Scenes[key]; scene.IsFirstScene {
			return scene, nil
		}
	}
	return nil, &NoStartSceneError{Scenes: len(s.Scenes)}
}

// SceneKeys returns the scene keys in the order they were declared.
func (s *Story) SceneKeys() []string {
	return orderedKeys(s.sceneOrder, s.Scenes)
}

// ItemKeys returns the item keys in the order they were declared.
func (sc *Scene) ItemKeys() []string {
	return orderedKeys(sc.itemOrder, sc.Items)
}

// Describe resolves a term against the scene. The scene's own name wins
// over any item; an unknown term yields the empty string.
func (sc *Scene) Describe(term string) string {
	if strings.EqualFold(term, sc.Name) {
		return sc.Description
	}
	if item := sc.FindItem(term); item != nil {
		return item.Description
	}
	return ""
}

// FindItem looks up an item by key, ignoring case. When several keys
// differ only in case the first declared one is returned.
func (sc *Scene) FindItem(term string) *Item {
	for _, key := range sc.ItemKeys() {
		if strings.EqualFold(term, key) {
			return sc.Items[key]
		}
	}
	return nil
}

// orderedKeys returns the recorded order when it still matches the map,
// and falls back to sorted keys for values built in code.
func orderedKeys[V any](order []string, m map[string]V) []string {
	if len(order) == len(m) {
		ok := true
		for _, k := range order {
			if _, found := m[k]; !found {
				ok = false
				break
			}
		}
		if ok {
			return order
		}
	}
	return sortedKeys(m)
}
