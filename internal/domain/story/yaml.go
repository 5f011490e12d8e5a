package story

import (
	"bytes"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultSource is where the story is read from when nothing else is
// configured.
const DefaultSource = "res/Story.yaml"

type sceneFields struct {
	Name         *string   `yaml:"name"`
	Description  *string   `yaml:"description"`
	Items        yaml.Node `yaml:"items"`
	IsFirstScene *bool     `yaml:"is_first_scene"`
}

type itemFields struct {
	Name        *string `yaml:"name"`
	Description *string `yaml:"description"`
}

// Decode reads a YAML story from r. source names the input in errors.
func Decode(r io.Reader, source string) (*Story, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Err: errors.Wrap(err, "read")}
	}
	return Parse(data, source)
}

// Parse decodes a YAML story document. Every failure is a *LoadError.
func Parse(data []byte, source string) (*Story, error) {
	var s Story
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if s.Scenes == nil {
		return nil, &LoadError{Source: source, Err: errors.New(`missing required field "scenes"`)}
	}
	return &s, nil
}

// Encode writes the story as YAML, keeping declaration order.
func (s *Story) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "encode story")
	}
	return enc.Close()
}

// Marshal returns the YAML form of the story.
func (s *Story) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Story) UnmarshalYAML(value *yaml.Node) error {
	var doc struct {
		Scenes yaml.Node `yaml:"scenes"`
	}
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Scenes.Kind == 0 {
		return errors.New(`missing required field "scenes"`)
	}
	scenes := resolve(&doc.Scenes)
	if scenes.Kind != yaml.MappingNode {
		return errors.Errorf(`line %d: "scenes" must be a mapping`, doc.Scenes.Line)
	}
	pairs, err := mappingPairs(scenes)
	if err != nil {
		return err
	}

	s.Scenes = make(map[string]*Scene, len(pairs))
	s.sceneOrder = nil
	for _, p := range pairs {
		key := p.key.Value
		if _, dup := s.Scenes[key]; dup {
			return errors.Errorf("line %d: duplicate scene %q", p.key.Line, key)
		}
		scene, err := decodeScene(p.value)
		if err != nil {
			return errors.Wrapf(err, "scene %q", key)
		}
		s.Scenes[key] = scene
		s.sceneOrder = append(s.sceneOrder, key)
	}
	return nil
}

func decodeScene(node *yaml.Node) (*Scene, error) {
	var f sceneFields
	if err := node.Decode(&f); err != nil {
		return nil, err
	}
	switch {
	case f.Name == nil:
		return nil, missingField("name")
	case f.Description == nil:
		return nil, missingField("description")
	case f.Items.Kind == 0:
		return nil, missingField("items")
	case f.IsFirstScene == nil:
		return nil, missingField("is_first_scene")
	}
	items := resolve(&f.Items)
	if items.Kind != yaml.MappingNode {
		return nil, errors.Errorf(`line %d: "items" must be a mapping`, f.Items.Line)
	}
	pairs, err := mappingPairs(items)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Name:         *f.Name,
		Description:  *f.Description,
		Items:        make(map[string]*Item, len(pairs)),
		IsFirstScene: *f.IsFirstScene,
	}
	for _, p := range pairs {
		key := p.key.Value
		if _, dup := scene.Items[key]; dup {
			return nil, errors.Errorf("line %d: duplicate item %q", p.key.Line, key)
		}
		var itf itemFields
		if err := p.value.Decode(&itf); err != nil {
			return nil, errors.Wrapf(err, "item %q", key)
		}
		if itf.Name == nil {
			return nil, errors.Wrapf(missingField("name"), "item %q", key)
		}
		if itf.Description == nil {
			return nil, errors.Wrapf(missingField("description"), "item %q", key)
		}
		scene.Items[key] = &Item{Name: *itf.Name, Description: *itf.Description}
		scene.itemOrder = append(scene.itemOrder, key)
	}
	return scene, nil
}

// resolve follows alias nodes to the anchored value.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

type nodePair struct {
	key, value *yaml.Node
}

// mappingPairs lists the entries of a mapping in document order with "<<"
// merge keys expanded in place. Keys written out explicitly override merged
// ones, and an earlier merge source overrides a later one.
func mappingPairs(m *yaml.Node) ([]nodePair, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(m.Content); i += 2 {
		if key := resolve(m.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = true
		}
	}

	var pairs []nodePair
	merged := make(map[string]bool)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := resolve(m.Content[i]), resolve(m.Content[i+1])
		if !isMergeKey(key) {
			pairs = append(pairs, nodePair{key: key, value: value})
			continue
		}

		sources := []*yaml.Node{value}
		if value.Kind == yaml.SequenceNode {
			sources = value.Content
		}
		for _, src := range sources {
			src = resolve(src)
			if src.Kind != yaml.MappingNode {
				return nil, errors.Errorf("line %d: merge source must be a mapping", src.Line)
			}
			inner, err := mappingPairs(src)
			if err != nil {
				return nil, err
			}
			for _, p := range inner {
				if explicit[p.key.Value] || merged[p.key.Value] {
					continue
				}
				merged[p.key.Value] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && n.ShortTag() == "!!merge"
}

func missingField(name string) error {
	return errors.Errorf("missing required field %q", name)
}

func (s *Story) MarshalYAML() (interface{}, error) {
	scenes := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range s.SceneKeys() {
		scene, err := s.Scenes[key].node()
		if err != nil {
			return nil, errors.Wrapf(err, "scene %q", key)
		}
		scenes.Content = append(scenes.Content, strNode(key), scene)
	}
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{strNode("scenes"), scenes},
	}, nil
}

func (sc *Scene) node() (*yaml.Node, error) {
	items := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range sc.ItemKeys() {
		var item yaml.Node
		if err := item.Encode(sc.Items[key]); err != nil {
			return nil, errors.Wrapf(err, "item %q", key)
		}
		items.Content = append(items.Content, strNode(key), &item)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("name"), strNode(sc.Name),
			strNode("description"), strNode(sc.Description),
			strNode("items"), items,
			strNode("is_first_scene"), {Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(sc.IsFirstScene)},
		},
	}, nil
}

func strNode(v string) *yaml.Node {
	n := &yaml.Node{}
	n.SetString(v)
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
