// Package frameworks holds the static catalog of brainstorming templates and
// the keyword routing that suggests one for a message.
package frameworks

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shubh-37/prosora/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is an immutable, ordered list of framework templates.
type Catalog struct {
	templates []models.FrameworkTemplate
	byID      map[string]int
}

// Parse builds a catalog from YAML. Ids must be unique and non-empty.
func Parse(data []byte) (*Catalog, error) {
	var templates []models.FrameworkTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse framework catalog: %w", err)
	}

	byID := make(map[string]int, len(templates))
	for i, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("framework at position %d has no id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate framework id %q", t.ID)
		}
		byID[t.ID] = i
	}

	return &Catalog{templates: templates, byID: byID}, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the built-in catalog, parsed once on first use.
func Default() *Catalog {
	return defaultCatalog()
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (models.FrameworkTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.FrameworkTemplate{}, false
	}
	return c.templates[i], true
}

// ByCategory returns every template in category, in catalog order.
func (c *Catalog) ByCategory(category models.FrameworkCategory) []models.FrameworkTemplate {
	var matches []models.FrameworkTemplate
	for _, t := range c.templates {
		if t.Category == category {
			matches = append(matches, t)
		}
	}
	return matches
}

// All returns a copy of the whole catalog.
func (c *Catalog) All() []models.FrameworkTemplate {
	return append([]models.FrameworkTemplate{}, c.templates...)
}

// startupDomain is the only domain routed to the lean canvas.
const startupDomain models.Domain = "startup"

// suggestionRules are evaluated in order; the first rule with any keyword present wins.
var suggestionRules = []struct {
	keywords []string
	pick     func(domain models.Domain) string
}{
	{[]string{"problem", "why", "root cause"}, fixed("five-whys")},
	{[]string{"user", "customer", "persona"}, fixed("empathy-map")},
	{[]string{"idea", "solution", "creative"}, fixed("scamper")},
	{[]string{"prioritize", "validate", "business model"}, func(domain models.Domain) string {
		if domain == startupDomain {
			return "lean-canvas"
		}
		return "ice-scoring"
	}},
	{[]string{"journey", "experience", "touchpoint"}, fixed("user-journey")},
}

func fixed(id string) func(models.Domain) string {
	return func(models.Domain) string { return id }
}

// Suggest picks a template for free text using fixed-priority keyword routing.
func (c *Catalog) Suggest(text string, domain models.Domain) (models.FrameworkTemplate, bool) {
	input := strings.ToLower(text)

	for _, rule := range suggestionRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(input, keyword) {
				return c.Get(rule.pick(domain))
			}
		}
	}

	return models.FrameworkTemplate{}, false
}
