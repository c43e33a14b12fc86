package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLEditor provides structured editing of the YAML config file using
// the yaml.v3 Node API, preserving comments and formatting.
type YAMLEditor struct {
	path string
}

// NewYAMLEditor creates a new editor for the given config file path.
func NewYAMLEditor(path string) *YAMLEditor {
	return &YAMLEditor{path: path}
}

// AddWidget adds a new widget entry to the catalog.
func (e *YAMLEditor) AddWidget(id string, w WidgetDef) error {
	doc, root, err := e.load()
	if err != nil {
		return err
	}

	wNode := findMappingKey(root, "widgets")
	if wNode == nil {
		// No widgets section, create one
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "widgets"},
			&yaml.Node{Kind: yaml.MappingNode},
		)
		wNode = root.Content[len(root.Content)-1]
	}

	if findMappingKey(wNode, id) != nil {
		return fmt.Errorf("widget '%s' already exists", id)
	}

	valueNode := &yaml.Node{Kind: yaml.MappingNode}
	title := w.Title
	if title == "" {
		title = id
	}
	valueNode.Content = append(valueNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "title"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: title},
	)
	if w.Icon != "" {
		valueNode.Content = append(valueNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "icon"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: w.Icon},
		)
	}
	if w.DefaultVisible {
		valueNode.Content = append(valueNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "default_visible"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: "true", Tag: "!!bool"},
		)
	}
	if w.Width != 0 {
		valueNode.Content = append(valueNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "width"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(w.Width, 'f', -1, 64)},
		)
	}
	if w.Height != 0 {
		valueNode.Content = append(valueNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "height"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(w.Height)},
		)
	}

	wNode.Content = append(wNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: id},
		valueNode,
	)

	return e.save(doc)
}

// DeleteWidget removes a widget from the catalog and from every preset.
func (e *YAMLEditor) DeleteWidget(id string) error {
	doc, root, err := e.load()
	if err != nil {
		return err
	}

	wNode := findMappingKey(root, "widgets")
	if wNode == nil {
		return fmt.Errorf("no widgets section in config")
	}

	idx := findMappingKeyIndex(wNode, id)
	if idx < 0 {
		return fmt.Errorf("widget '%s' not found", id)
	}

	// Remove the key-value pair (2 consecutive entries in Content)
	wNode.Content = append(wNode.Content[:idx], wNode.Content[idx+2:]...)

	if presets := findMappingKey(root, "presets"); presets != nil && presets.Kind == yaml.MappingNode {
		for i := 1; i < len(presets.Content); i += 2 {
			list := findMappingKey(presets.Content[i], "widgets")
			if list == nil || list.Kind != yaml.SequenceNode {
				continue
			}
			kept := list.Content[:0]
			for _, item := range list.Content {
				if item.Value != id {
					kept = append(kept, item)
				}
			}
			list.Content = kept
		}
	}

	return e.save(doc)
}

// SetDefaultVisible updates or inserts the default_visible flag for a widget.
func (e *YAMLEditor) SetDefaultVisible(id string, visible bool) error {
	doc, root, err := e.load()
	if err != nil {
		return err
	}

	wNode := findMappingKey(root, "widgets")
	if wNode == nil {
		return fmt.Errorf("no widgets section in config")
	}

	entryNode := findMappingKey(wNode, id)
	if entryNode == nil {
		return fmt.Errorf("widget '%s' not found", id)
	}

	val := strconv.FormatBool(visible)
	if v := findMappingKey(entryNode, "default_visible"); v != nil {
		v.Value = val
		v.Tag = "!!bool"
	} else {
		entryNode.Content = append(entryNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "default_visible"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: val, Tag: "!!bool"},
		)
	}

	return e.save(doc)
}

func (e *YAMLEditor) load() (*yaml.Node, *yaml.Node, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, fmt.Errorf("invalid YAML document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("root is not a mapping")
	}

	return &doc, root, nil
}

func (e *YAMLEditor) save(doc *yaml.Node) error {
	out, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("opening config for write: %w", err)
	}
	defer out.Close()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// findMappingKey finds the value node for a key in a MappingNode.
func findMappingKey(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// findMappingKeyIndex returns the index of a key in a MappingNode's Content, or -1.
func findMappingKeyIndex(mapping *yaml.Node, key string) int {
	if mapping.Kind != yaml.MappingNode {
		return -1
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}
