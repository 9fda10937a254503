// CLAUDE:SUMMARY Named normalization rule sets loaded from YAML files, validated, with a built-in default.
package preset

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

// DefaultID names the built-in preset.
const DefaultID = "default"

// Preset is a named rule set.
type Preset struct {
	ID          string          `yaml:"id" json:"id" validate:"required,max=64,excludesall=/"`
	Description string          `yaml:"description" json:"description,omitempty"`
	Rules       normalize.Rules `yaml:"rules" json:"rules" validate:"-"`
	Source      string          `yaml:"-" json:"source,omitempty"`
}

// Default returns the built-in preset.
func Default() Preset {
	return Preset{
		ID:          DefaultID,
		Description: "Nomes capitalizados, telefone +55 (XX) XXXXX-XXXX",
		Rules:       normalize.DefaultRules(),
	}
}

var validate = validator.New()

// Validate checks the preset identity and its rules.
func (p Preset) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("preset %q: %w", p.ID, err)
	}
	if err := p.Rules.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.ID, err)
	}
	return nil
}

// Parse decodes a preset document. Rules left out of the document keep
// their default value.
func Parse(data []byte) (Preset, error) {
	p := Preset{Rules: normalize.DefaultRules()}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadFile reads and parses one preset file.
func LoadFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	p.Source = path
	return p, nil
}
