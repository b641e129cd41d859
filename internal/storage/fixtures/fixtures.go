// Package fixtures holds the built-in places and posts served when no
// database answers, and used by the seed command.
package fixtures

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MosinFAM/halal-guide/internal/models"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Dataset is the built-in content.
type Dataset struct {
	Places []models.HalalPlace `yaml:"places"`
	Posts  []models.Post       `yaml:"posts"`
}

// Load parses the embedded YAML files and validates every record against the
// closed enumerations.
func Load() (*Dataset, error) {
	var ds Dataset
	if err := decode("data/places.yaml", &ds); err != nil {
		return nil, err
	}
	if err := decode("data/posts.yaml", &ds); err != nil {
		return nil, err
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// MustLoad is Load for callers that cannot run without the dataset.
func MustLoad() *Dataset {
	ds, err := Load()
	if err != nil {
		panic(err)
	}
	return ds
}

func decode(name string, into *Dataset) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (ds *Dataset) validate() error {
	for i, p := range ds.Places {
		if !p.Category.Valid() {
			return fmt.Errorf("place %d (%s): invalid category %q", i, p.Name, p.Category)
		}
		if !p.HalalLevel.Valid() {
			return fmt.Errorf("place %d (%s): invalid halal level %q", i, p.Name, p.HalalLevel)
		}
	}
	for i, p := range ds.Posts {
		if !p.Category.Valid() {
			return fmt.Errorf("post %d (%s): invalid category %q", i, p.Title, p.Category)
		}
		if !p.Language.Valid() {
			return fmt.Errorf("post %d (%s): invalid language %q", i, p.Title, p.Language)
		}
		for _, c := range p.Comments {
			if c.PostID != p.ID {
				return fmt.Errorf("comment %d: belongs to post %d, listed under %d", c.ID, c.PostID, p.ID)
			}
		}
	}
	return nil
}
