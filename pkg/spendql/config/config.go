package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/spendql/pkg/spendql/internalerr"
)

// Categories represents the category keyword configuration.
// Entries are an ordered list because registration order drives the
// extractor's tie-break (first-registered wins).
type Categories struct {
	Categories []CategoryEntry `yaml:"categories"`
	Aliases    []AliasEntry    `yaml:"aliases"`
}

// CategoryEntry maps a category label to its trigger keywords.
type CategoryEntry struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// AliasEntry folds one category label into a canonical one.
type AliasEntry struct {
	Label     string `yaml:"label"`
	Canonical string `yaml:"canonical"`
}

// LoadCategories loads the category configuration from a YAML file.
func LoadCategories(path string) (*Categories, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cats Categories
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if len(cats.Categories) == 0 {
		return nil, fmt.Errorf("%w: %s: no categories defined", internalerr.ErrInvalidConfig, path)
	}

	return &cats, nil
}

// Merchants represents the merchant list and merchant->category map.
type Merchants struct {
	Merchants  []string          `yaml:"merchants"`
	Categories map[string]string `yaml:"categories"`
}

// LoadMerchants loads the merchant configuration from a YAML file.
func LoadMerchants(path string) (*Merchants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Merchants
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &m, nil
}

// Intents represents the intent template configuration.
// Entries are an ordered list: classification ties resolve to the
// earliest phrase in flattened order.
type Intents struct {
	Intents []IntentEntry `yaml:"intents"`
}

// IntentEntry maps an intent label to its example phrases.
type IntentEntry struct {
	Intent  string   `yaml:"intent"`
	Phrases []string `yaml:"phrases"`
}

// LoadIntents loads the intent template configuration from a YAML file.
func LoadIntents(path string) (*Intents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var in Intents
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if len(in.Intents) == 0 {
		return nil, fmt.Errorf("%w: %s: no intents defined", internalerr.ErrInvalidConfig, path)
	}

	return &in, nil
}
