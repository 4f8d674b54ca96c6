package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/lexicon"
	"github.com/cognicore/proptree/pkg/proptree/namedb"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
)

// Stoplist represents the predicate stoplist configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stop symbols from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// WeightTable represents the predicate weight configuration
//
//	weights:
//	  be: 0.2
//	  say: 0.5
type WeightTable struct {
	InheritDefaults bool               `yaml:"inherit_defaults"`
	Weights         map[string]float64 `yaml:"weights"`
}

// LoadWeights loads predicate priors from a YAML file. Every weight must lie
// in [0,1].
func LoadWeights(path string) (*predicate.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wt WeightTable
	if err := yaml.Unmarshal(data, &wt); err != nil {
		return nil, err
	}

	for sym, w := range wt.Weights {
		if strings.TrimSpace(sym) == "" {
			return nil, fmt.Errorf("weights: empty symbol: %w", internalerr.ErrInvalidConfig)
		}
		if w < 0 || w > 1 || math.IsNaN(w) {
			return nil, fmt.Errorf("weights: %q = %v outside [0,1]: %w", sym, w, internalerr.ErrInvalidConfig)
		}
	}
	if wt.InheritDefaults {
		return predicate.DefaultWeights().With(wt.Weights), nil
	}
	return predicate.NewWeights(wt.Weights), nil
}

// LoadConfusion loads type and role confusion tables from a YAML file
func LoadConfusion(path string) (*confusion.Model, error) {
	return confusion.LoadYAML(path)
}

// LoadLexicon loads synonym groups and related terms from a YAML file
func LoadLexicon(path string) (*lexicon.Lexicon, error) {
	return lexicon.LoadFromYAML(path)
}

// LoadNames loads the equivalent-name dictionary. Files ending in .db,
// .sqlite or .sqlite3 are opened as SQLite stores and copied into memory;
// anything else is read as YAML.
func LoadNames(ctx context.Context, path string) (*namedb.Memory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		st, err := namedb.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return namedb.Snapshot(ctx, st)
	}
	return namedb.LoadYAML(path)
}
