package config

import (
	"context"
	"fmt"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/lexicon"
	"github.com/cognicore/proptree/pkg/proptree/namedb"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	ConfusionPath string
	WeightsPath   string
	StoplistPath  string
	LexiconPath   string
	NamesPath     string
}

// Components holds all loaded configuration components
type Components struct {
	Model   *confusion.Model
	Weights *predicate.Weights
	Filter  *predicate.Filter
	Lexicon *lexicon.Lexicon
	Names   *namedb.Memory
}

// Load reads all configuration files and returns initialized components.
// Missing paths fall back to the built-in defaults; the lexicon and name
// dictionary stay nil, which disables their expanders.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{}

	// Load confusion tables
	if l.ConfusionPath != "" {
		m, err := LoadConfusion(l.ConfusionPath)
		if err != nil {
			return nil, fmt.Errorf("load confusion: %w", err)
		}
		comp.Model = m
	} else {
		comp.Model = confusion.Default()
	}

	// Load predicate weights
	if l.WeightsPath != "" {
		w, err := LoadWeights(l.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load weights: %w", err)
		}
		comp.Weights = w
	} else {
		comp.Weights = predicate.DefaultWeights()
	}

	// Load stoplist
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Filter = predicate.NewFilter(sl.Terms)
	} else {
		comp.Filter = predicate.NewFilter(nil)
	}

	if l.LexiconPath != "" {
		lex, err := LoadLexicon(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	}

	if l.NamesPath != "" {
		names, err := LoadNames(ctx, l.NamesPath)
		if err != nil {
			return nil, fmt.Errorf("load names: %w", err)
		}
		comp.Names = names
	}

	return comp, nil
}
