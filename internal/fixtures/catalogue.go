package fixtures

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Catalogue is the raw material recommendations are built from.
type Catalogue struct {
	Videos []string `yaml:"videos"`
	Words  []string `yaml:"words"`
}

// DefaultCatalogue parses the embedded catalogue.
func DefaultCatalogue() (Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// ParseCatalogue decodes a YAML catalogue and checks that it can produce
// valid recommendations.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalogue{}, fmt.Errorf("failed to parse catalogue yaml: %w", err)
	}

	if len(c.Videos) == 0 {
		return Catalogue{}, errors.New("catalogue has no videos")
	}
	if len(c.Words) == 0 {
		return Catalogue{}, errors.New("catalogue has no words")
	}
	for _, v := range c.Videos {
		if !domain.IsYouTubeLink(v) {
			return Catalogue{}, fmt.Errorf("catalogue video %q is not a youtube link", v)
		}
	}
	return c, nil
}
