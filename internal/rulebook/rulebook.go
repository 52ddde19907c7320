// Package rulebook loads the rule parameters and regulatory references from
// YAML. An embedded copy is the default; a file on disk overrides it key by
// key.
package rulebook

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"pillartwo/domain/core"
	"pillartwo/domain/rules"
	"pillartwo/internal/errors"
)

//go:embed rulebook.yaml
var embedded []byte

// Article is one cited provision.
type Article struct {
	Article string `yaml:"article" json:"article"`
	Text    string `yaml:"text" json:"text"`
}

// Reference is the regulatory text behind one calculation type.
type Reference struct {
	Article            string    `yaml:"article" json:"article"`
	Text               string    `yaml:"text" json:"text"`
	AdditionalArticles []Article `yaml:"additional_articles,omitempty" json:"additional_articles,omitempty"`
}

// UnknownReference is returned for calculation types without a reference.
var UnknownReference = Reference{
	Article: "Unknown",
	Text:    "No regulatory reference found for this calculation type.",
}

// Rulebook is a validated rule set plus its references.
type Rulebook struct {
	Rules      rules.Config         `yaml:"rules"`
	References map[string]Reference `yaml:"references"`

	hash   core.RulebookHash
	source string
}

// Default decodes the embedded rulebook.
func Default() (*Rulebook, error) {
	rb := &Rulebook{}
	if err := decode(embedded, rb); err != nil {
		return nil, errors.Wrap(err, "embedded rulebook")
	}
	rb.source = "embedded"
	rb.hash = core.NewRulebookHash(embedded)
	if err := rb.validate(); err != nil {
		return nil, err
	}
	return rb, nil
}

// Load returns the embedded rulebook when path is empty. Otherwise the file
// is decoded over the embedded defaults.
func Load(path string) (*Rulebook, error) {
	rb, err := Default()
	if err != nil || path == "" {
		return rb, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read rulebook %s: %w", path, err))
	}
	if err := decode(data, rb); err != nil {
		return nil, errors.Wrapf(err, "rulebook %s", path)
	}
	rb.source = path
	rb.hash = core.NewRulebookHash(append(append([]byte{}, embedded...), data...))
	if err := rb.validate(); err != nil {
		return nil, err
	}
	return rb, nil
}

func decode(data []byte, rb *Rulebook) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rb); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func (rb *Rulebook) validate() error {
	c := rb.Rules
	switch {
	case c.MinimumRate <= 0 || c.MinimumRate >= 1:
		return errors.ConfigInvalid(fmt.Sprintf("minimum_rate %v must be in (0, 1)", c.MinimumRate))
	case c.Tolerances.ETR < 0 || c.Tolerances.Amount < 0:
		return errors.ConfigInvalid("tolerances must not be negative")
	case c.Thresholds.ZScoreSpan < 0:
		return errors.ConfigInvalid("z_score_span must not be negative")
	case len(c.Regions) == 0:
		return errors.ConfigInvalid("at least one region is required")
	case c.SafeHarbor.DefaultYear == "":
		return errors.ConfigInvalid("safe_harbor.default_year is required")
	}
	if _, ok := c.Regions[rules.RegionAll]; ok {
		return errors.ConfigInvalid(fmt.Sprintf("region name %q is reserved", rules.RegionAll))
	}
	for name, p := range map[string]float64{
		"high_etr_flag_probability": c.Noise.HighETRFlagProbability,
		"statistical_probability":   c.Noise.StatisticalProbability,
		"low_activity_probability":  c.Noise.LowActivityProbability,
		"mid_activity_probability":  c.Noise.MidActivityProbability,
	} {
		if p < 0 || p > 1 {
			return errors.ConfigInvalid(fmt.Sprintf("noise.%s %v must be in [0, 1]", name, p))
		}
	}
	return nil
}

// Hash fingerprints the YAML the rulebook was built from.
func (rb *Rulebook) Hash() core.RulebookHash { return rb.hash }

// Source is "embedded" or the override file path.
func (rb *Rulebook) Source() string { return rb.source }

// Reference looks up the reference for a calculation type. Unknown types
// yield UnknownReference and false.
func (rb *Rulebook) Reference(calcType string) (Reference, bool) {
	ref, ok := rb.References[strings.ToLower(calcType)]
	if !ok {
		return UnknownReference, false
	}
	return ref, true
}

// Markdown renders a reference as a short markdown document.
func (r Reference) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n%s\n", r.Article, r.Text)
	if len(r.AdditionalArticles) > 0 {
		b.WriteString("\n")
		for _, a := range r.AdditionalArticles {
			fmt.Fprintf(&b, "- **%s:** %s\n", a.Article, a.Text)
		}
	}
	return b.String()
}

// HTML renders the reference markdown to an HTML fragment.
func (r Reference) HTML() string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(r.Markdown()), p, renderer))
}
