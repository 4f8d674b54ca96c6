// Package namedb provides the equivalent-name dictionary: for a name such as
// "Bill Clinton" it lists alternative surface forms ("William Clinton",
// "Clinton") with a confidence score. Entries are persisted in SQLite and
// served from an in-memory snapshot.
package namedb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
)

// Equivalent is an alternative form of a name.
type Equivalent struct {
	Name  string  `yaml:"name"`
	Score float64 `yaml:"score"`
}

// Entry is one dictionary row.
type Entry struct {
	Name       string
	Equivalent string
	Score      float64
}

// Source is a persistent dictionary that can be snapshotted.
type Source interface {
	All(ctx context.Context) ([]Entry, error)
	Close() error
}

// Memory is an in-memory dictionary. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]Equivalent
}

// NewMemory creates an empty dictionary.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Equivalent)}
}

func key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Add records equivalent as an alternative form of name. Scores outside
// (0,1] are rejected; a repeated pair keeps the higher score.
func (m *Memory) Add(name, equivalent string, score float64) error {
	if score <= 0 || score > 1 {
		return fmt.Errorf("score %v for %q: %w", score, name, internalerr.ErrInvalidInput)
	}
	k := key(name)
	equivalent = strings.Join(strings.Fields(equivalent), " ")
	if k == "" || equivalent == "" || key(equivalent) == k {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	eqs := m.entries[k]
	for i, e := range eqs {
		if e.Name == equivalent {
			if score > e.Score {
				eqs[i].Score = score
			}
			return nil
		}
	}
	m.entries[k] = append(eqs, Equivalent{Name: equivalent, Score: score})
	return nil
}

// Lookup returns the equivalents of name, best score first. Names are matched
// case-insensitively with whitespace collapsed.
func (m *Memory) Lookup(name string) []Equivalent {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	eqs := append([]Equivalent(nil), m.entries[key(name)]...)
	m.mu.RUnlock()
	sort.SliceStable(eqs, func(i, j int) bool { return eqs[i].Score > eqs[j].Score })
	return eqs
}

// Len returns the number of names with at least one equivalent.
func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot copies every entry of src into a new in-memory dictionary.
func Snapshot(ctx context.Context, src Source) (*Memory, error) {
	rows, err := src.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot names: %w", err)
	}
	m := NewMemory()
	for _, r := range rows {
		if err := m.Add(r.Name, r.Equivalent, r.Score); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadYAML reads a dictionary file.
//
//	names:
//	  - name: Bill Clinton
//	    equivalents:
//	      - {name: William Clinton, score: 0.9}
func LoadYAML(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Names []struct {
			Name        string       `yaml:"name"`
			Equivalents []Equivalent `yaml:"equivalents"`
		} `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}
	m := NewMemory()
	for _, n := range cfg.Names {
		for _, e := range n.Equivalents {
			if err := m.Add(n.Name, e.Name, e.Score); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return m, nil
}
