package forest

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cognicore/proptree/pkg/proptree/builder"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Expander adds predicates to freshly built nodes of doc.
type Expander interface {
	Expand(doc *theory.Document, nodes []*propnode.Node)
}

// Cache keeps one expanded forest per document ID. An entry is only reused
// for the document it was built from; another document carrying the same ID
// replaces it.
type Cache struct {
	cache    *gocache.Cache
	opts     builder.Options
	expander Expander
	log      *slog.Logger
}

// NewCache creates a cache whose entries expire after ttl. A zero ttl keeps
// entries until they are invalidated. expander may be nil.
func NewCache(ttl time.Duration, opts builder.Options, expander Expander) *Cache {
	cleanup := ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		cache:    gocache.New(ttl, cleanup),
		opts:     opts,
		expander: expander,
		log:      logger,
	}
}

// Get returns the cached forest for doc, building and expanding it first if
// it is missing, was built from a different document with the same ID, or
// force is set.
func (c *Cache) Get(doc *theory.Document, force bool) (*DocForest, error) {
	if doc == nil {
		return nil, fmt.Errorf("forest cache: %w", internalerr.ErrInvalidInput)
	}
	if !force {
		if v, ok := c.cache.Get(doc.ID); ok {
			if f := v.(*DocForest); f.Document() == doc {
				return f, nil
			}
			c.log.Debug("document id reused by another document", "document", doc.ID)
		}
	}

	f, err := Build(doc, c.opts)
	if err != nil {
		return nil, err
	}
	if c.expander != nil {
		c.expander.Expand(doc, f.AllNodes())
	}
	c.cache.Set(doc.ID, f, gocache.DefaultExpiration)
	c.log.Debug("built document forest",
		"document", doc.ID, "forest", f.ID(),
		"sentences", f.NSentences(), "nodes", f.Arena().Len(), "forced", force)
	return f, nil
}

// Lookup returns a cached forest without building one.
func (c *Cache) Lookup(docID string) (*DocForest, error) {
	if v, ok := c.cache.Get(docID); ok {
		return v.(*DocForest), nil
	}
	return nil, fmt.Errorf("forest for %q: %w", docID, internalerr.ErrNotFound)
}

// Invalidate drops the forest of one document.
func (c *Cache) Invalidate(docID string) {
	c.cache.Delete(docID)
}

// Len returns the number of cached forests.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
