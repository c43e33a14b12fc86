package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/wcatz/dashboard-layout/internal/layout"
	"github.com/wcatz/dashboard-layout/internal/store"
	"gopkg.in/yaml.v3"
)

var bracedRefRe = regexp.MustCompile(`\$\{(\w+)\}`)

// WidgetDef is a widget catalog entry from config YAML.
type WidgetDef struct {
	Title          string  `yaml:"title"`
	Icon           string  `yaml:"icon"`
	DefaultVisible bool    `yaml:"default_visible"`
	Width          float64 `yaml:"width"`
	Height         int     `yaml:"height"`
}

// StoreSettings selects the layout store backend.
type StoreSettings struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// ServerSettings holds HTTP server config.
type ServerSettings struct {
	ListenAddr string `yaml:"listen_addr"`
}

// PresetDef is a named set of widgets shown on reset.
type PresetDef struct {
	Widgets []string `yaml:"widgets"`
}

// Config holds the entire YAML configuration.
type Config struct {
	Store        StoreSettings        `yaml:"store"`
	Server       ServerSettings       `yaml:"server"`
	DeviceIDFile string               `yaml:"device_id_file"`
	Constants    map[string]string    `yaml:"constants"`
	Presets      map[string]PresetDef `yaml:"presets"`
	Widgets      map[string]WidgetDef `yaml:"widgets"`

	overrides   map[string]string
	widgetOrder []string
}

// Load reads and parses a YAML config file. Overrides take precedence over
// file values; recognised keys are store_backend, store_path and listen_addr.
func Load(path string, overrides map[string]string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return loadFromData(data, overrides)
}

// LoadFromBytes parses a YAML config from raw bytes (for validation).
func LoadFromBytes(data []byte) (*Config, error) {
	return loadFromData(data, nil)
}

func loadFromData(data []byte, overrides map[string]string) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	c.widgetOrder = parseWidgetKeyOrder(data)

	c.overrides = overrides
	if c.overrides == nil {
		c.overrides = make(map[string]string)
	}
	return &c, nil
}

// Validate checks the catalog for values the layout engine cannot honour.
func (c *Config) Validate() error {
	if len(c.Widgets) == 0 {
		return fmt.Errorf("no widgets defined in config")
	}
	var problems []string
	for _, id := range c.WidgetOrder() {
		w := c.Widgets[id]
		if strings.HasPrefix(id, "row-gap-") {
			problems = append(problems, fmt.Sprintf("widget '%s': id collides with row gap targets", id))
		}
		if w.Width != 0 && (w.Width < layout.MinWidthPercent || w.Width > layout.MaxWidthPercent) {
			problems = append(problems, fmt.Sprintf("widget '%s': width %v outside [%v, %v]",
				id, w.Width, layout.MinWidthPercent, layout.MaxWidthPercent))
		}
		if w.Height != 0 && (w.Height < layout.MinHeightPx || w.Height > layout.MaxHeightPx) {
			problems = append(problems, fmt.Sprintf("widget '%s': height %d outside [%d, %d]",
				id, w.Height, layout.MinHeightPx, layout.MaxHeightPx))
		}
	}
	for name, p := range c.Presets {
		for _, id := range p.Widgets {
			if _, ok := c.Widgets[id]; !ok {
				problems = append(problems, fmt.Sprintf("preset '%s': widget '%s' not defined", name, id))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// Catalog returns the widget catalog in config order. With a preset, only
// the preset's widgets are default-visible.
func (c *Config) Catalog(preset string) (layout.Catalog, error) {
	var shown map[string]bool
	if preset != "" {
		p, ok := c.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("preset '%s' not defined in config", preset)
		}
		shown = make(map[string]bool)
		for _, id := range p.Widgets {
			shown[id] = true
		}
	}

	order := c.WidgetOrder()
	cat := make(layout.Catalog, 0, len(order))
	for _, id := range order {
		def, ok := c.Widgets[id]
		if !ok {
			continue
		}
		visible := def.DefaultVisible
		if shown != nil {
			visible = shown[id]
		}
		title := def.Title
		if title == "" {
			title = id
		}
		cat = append(cat, layout.Widget{
			ID:             id,
			Title:          title,
			Icon:           def.Icon,
			DefaultVisible: visible,
			WidthPercent:   def.Width,
			HeightPx:       def.Height,
		})
	}
	return cat, nil
}

// WidgetOrder returns widget ids in the order they appear in the YAML.
func (c *Config) WidgetOrder() []string {
	if len(c.widgetOrder) > 0 {
		return c.widgetOrder
	}
	// Fallback to map keys
	keys := make([]string, 0, len(c.Widgets))
	for k := range c.Widgets {
		keys = append(keys, k)
	}
	return keys
}

// parseWidgetKeyOrder extracts widget key ordering from raw YAML.
func parseWidgetKeyOrder(data []byte) []string {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == "widgets" {
			wNode := root.Content[i+1]
			if wNode.Kind != yaml.MappingNode {
				return nil
			}
			var order []string
			for j := 0; j < len(wNode.Content)-1; j += 2 {
				order = append(order, wNode.Content[j].Value)
			}
			return order
		}
	}
	return nil
}

// StoreConfig returns the store backend settings with overrides and
// ${name} references applied.
func (c *Config) StoreConfig() store.Config {
	s := c.Store
	if v, ok := c.overrides["store_backend"]; ok && v != "" {
		s.Backend = v
	}
	if v, ok := c.overrides["store_path"]; ok && v != "" {
		s.Path = v
	}
	return store.Config{
		Backend:    s.Backend,
		Path:       c.ResolveRef(s.Path),
		Addr:       c.ResolveRef(s.Addr),
		Password:   c.ResolveRef(s.Password),
		DB:         s.DB,
		URI:        c.ResolveRef(s.URI),
		Database:   s.Database,
		Collection: s.Collection,
	}
}

// ListenAddr returns the HTTP listen address, defaulting to :8080.
func (c *Config) ListenAddr() string {
	if v, ok := c.overrides["listen_addr"]; ok && v != "" {
		return v
	}
	if c.Server.ListenAddr != "" {
		return c.Server.ListenAddr
	}
	return ":8080"
}

// GetConstant returns a named constant string.
func (c *Config) GetConstant(name string) string {
	return c.Constants[name]
}

// ResolveRef resolves ${name} references in a string, from constants first
// and then the environment.
func (c *Config) ResolveRef(value string) string {
	return bracedRefRe.ReplaceAllStringFunc(value, func(match string) string {
		refName := bracedRefRe.FindStringSubmatch(match)[1]
		if v := c.GetConstant(refName); v != "" {
			return v
		}
		if v, ok := os.LookupEnv(refName); ok {
			return v
		}
		return match
	})
}

