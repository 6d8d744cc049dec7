package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Topic groups related tags with question and recommendation titles.
type Topic struct {
	Name      string   `yaml:"name"`
	Tags      []string `yaml:"tags"`
	Questions []string `yaml:"questions"`
	Positive  []string `yaml:"positive"`
	Negative  []string `yaml:"negative"`
}

// Catalog is the demo vocabulary used to build believable posts.
type Catalog struct {
	Cities []string `yaml:"cities"`
	Topics []Topic  `yaml:"topics"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document and checks every topic can
// produce questions and notes.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	if len(c.Topics) == 0 {
		return nil, fmt.Errorf("seed catalog has no topics")
	}
	for _, t := range c.Topics {
		if len(t.Questions) == 0 || len(t.Positive)+len(t.Negative) == 0 {
			return nil, fmt.Errorf("seed topic %q needs questions and recommendations", t.Name)
		}
	}
	return &c, nil
}

// Tags lists every tag in the catalog once.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range c.Topics {
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
