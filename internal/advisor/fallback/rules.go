// Package fallback generates recommendations from a local keyword rule pack
// when external generation is unavailable or returns unusable output.
package fallback

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

//go:embed rules.yaml
var rulesYAML []byte

// RulePack is the full rule configuration: ordered categories plus the
// generic template used when nothing matches.
type RulePack struct {
	Categories []Category `yaml:"categories"`
	Generic    Template   `yaml:"generic"`
}

// Category pairs a keyword list with the recommendation template it emits.
// Matching is non-exclusive across categories.
type Category struct {
	Slug     string   `yaml:"slug"`
	Keywords []string `yaml:"keywords"`
	Template Template `yaml:"template"`
}

// Template is the static body of a rule-generated recommendation.
type Template struct {
	Title              string             `yaml:"title"`
	Description        string             `yaml:"description"`
	Priority           model.Priority     `yaml:"priority"`
	EstimatedHours     int                `yaml:"estimated_hours"`
	ExpectedSavings    string             `yaml:"expected_savings"`
	ImplementationTime string             `yaml:"implementation_time"`
	ROIPercentage      float64            `yaml:"roi_percentage"`
	Tools              []model.Tool       `yaml:"tools"`
	FlowExample        *model.FlowDiagram `yaml:"flow_example"`
}

// LoadRules parses and validates the embedded rule pack.
func LoadRules() (*RulePack, error) {
	var pack RulePack
	if err := yaml.Unmarshal(rulesYAML, &pack); err != nil {
		return nil, eris.Wrap(err, "fallback: parse rules")
	}
	if err := pack.validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

func (p *RulePack) validate() error {
	if len(p.Categories) == 0 {
		return eris.New("fallback: rule pack has no categories")
	}
	seen := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		if c.Slug == "" {
			return eris.New("fallback: category with empty slug")
		}
		if seen[c.Slug] {
			return eris.Errorf("fallback: duplicate category slug %q", c.Slug)
		}
		seen[c.Slug] = true
		if len(c.Keywords) == 0 {
			return eris.Errorf("fallback: category %q has no keywords", c.Slug)
		}
		if err := c.Template.validate(c.Slug); err != nil {
			return err
		}
	}
	if err := p.Generic.validate("generic"); err != nil {
		return err
	}
	return nil
}

func (t *Template) validate(slug string) error {
	if t.Title == "" {
		return eris.Errorf("fallback: template %q has no title", slug)
	}
	if t.Priority == "" {
		return eris.Errorf("fallback: template %q has no priority", slug)
	}
	if len(t.Tools) == 0 {
		return eris.Errorf("fallback: template %q has no tools", slug)
	}
	if t.FlowExample != nil {
		if err := t.FlowExample.Validate(); err != nil {
			return eris.Wrapf(err, "fallback: template %q flow", slug)
		}
	}
	return nil
}
