package config

import (
	"fmt"

	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/internalerr"
	"github.com/cognicore/spendql/pkg/spendql/lexicon"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	CategoriesPath string
	MerchantsPath  string
	IntentsPath    string
}

// Components holds all loaded configuration components
type Components struct {
	Lexicon   *lexicon.Lexicon
	Templates []intent.Template
}

// Load reads all configuration files and returns initialized components.
// Malformed configuration is fatal here, at startup, never per-query.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Lexicon: lexicon.New()}

	if l.CategoriesPath != "" {
		cats, err := LoadCategories(l.CategoriesPath)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		for _, entry := range cats.Categories {
			comp.Lexicon.AddCategory(entry.Label, entry.Keywords)
		}
		for _, alias := range cats.Aliases {
			comp.Lexicon.AddAlias(alias.Label, alias.Canonical)
		}
	}

	if l.MerchantsPath != "" {
		merchants, err := LoadMerchants(l.MerchantsPath)
		if err != nil {
			return nil, fmt.Errorf("load merchants: %w", err)
		}
		for _, name := range merchants.Merchants {
			comp.Lexicon.AddMerchant(name)
		}
		for merchant, category := range merchants.Categories {
			comp.Lexicon.SetMerchantCategory(merchant, category)
		}
	}

	if l.IntentsPath != "" {
		intents, err := LoadIntents(l.IntentsPath)
		if err != nil {
			return nil, fmt.Errorf("load intents: %w", err)
		}
		for _, entry := range intents.Intents {
			label := intent.Intent(entry.Intent)
			if !label.Valid() {
				return nil, fmt.Errorf("%w: %s: intent %q is not in the closed set",
					internalerr.ErrInvalidConfig, l.IntentsPath, entry.Intent)
			}
			comp.Templates = append(comp.Templates, intent.Template{
				Intent:  label,
				Phrases: entry.Phrases,
			})
		}
	}

	return comp, nil
}
