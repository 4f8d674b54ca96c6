// Package builder converts the propositions and mentions of one sentence into
// proposition-tree nodes. Every mention and proposition is resolved at most
// once; later references reuse the memoized nodes, which is what makes the
// result a DAG rather than a tree.
package builder

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Options tunes tree construction.
type Options struct {
	// CollapseRedundantModifiers skips preposition-headed modifier
	// propositions such as of(<ref>:e4, of:e6) and attaches their single
	// argument directly.
	CollapseRedundantModifiers bool
	// Filter rejects predicate symbols. Nil applies the built-in blacklist.
	Filter *predicate.Filter
	Logger *slog.Logger
}

// DefaultOptions returns the standard construction settings.
func DefaultOptions() Options {
	return Options{CollapseRedundantModifiers: true}
}

// Builder builds the nodes of a single sentence into an arena.
type Builder struct {
	doc   *theory.Document
	sent  *theory.Sentence
	arena *propnode.Arena
	opts  Options
	log   *slog.Logger

	mentionDone []bool
	mentionRes  [][]*propnode.Node
	propDone    []bool
	propBusy    []bool
	propRes     [][]*propnode.Node

	roots []*propnode.Node
	nodes []*propnode.Node
}

// New prepares a builder for sentence sentIdx of doc. Nodes are added to arena.
func New(doc *theory.Document, sentIdx int, arena *propnode.Arena, opts Options) (*Builder, error) {
	if doc == nil || arena == nil {
		return nil, fmt.Errorf("builder needs a document and an arena: %w", internalerr.ErrInvalidInput)
	}
	if sentIdx < 0 || sentIdx >= len(doc.Sentences) {
		return nil, fmt.Errorf("sentence %d of %d: %w", sentIdx, len(doc.Sentences), internalerr.ErrOutOfRange)
	}
	sent := doc.Sentences[sentIdx]
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		doc:         doc,
		sent:        sent,
		arena:       arena,
		opts:        opts,
		log:         logger,
		mentionDone: make([]bool, len(sent.Mentions)),
		mentionRes:  make([][]*propnode.Node, len(sent.Mentions)),
		propDone:    make([]bool, len(sent.Propositions)),
		propBusy:    make([]bool, len(sent.Propositions)),
		propRes:     make([][]*propnode.Node, len(sent.Propositions)),
	}, nil
}

// Roots returns the nodes produced by the From* calls, in call order.
func (b *Builder) Roots() []*propnode.Node { return b.roots }

// AllNodes returns every node the builder created, in construction order.
func (b *Builder) AllNodes() []*propnode.Node { return b.nodes }

// FromSentence builds the whole sentence: every verb proposition that is not
// an argument of another proposition, then every top-level mention that no
// proposition reached.
func (b *Builder) FromSentence() ([]*propnode.Node, error) {
	embedded := make(map[*theory.Proposition]bool)
	for _, p := range b.sent.Propositions {
		for _, a := range p.Args {
			if a.Proposition != nil {
				embedded[a.Proposition] = true
			}
		}
	}

	var out []*propnode.Node
	for _, p := range b.sent.Propositions {
		if !p.Type.IsVerb() || embedded[p] {
			continue
		}
		res, err := b.resolveProposition(p, nil, nil, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}

	for _, m := range b.sent.Mentions {
		for steps := 0; m.Parent != nil && steps < len(b.sent.Mentions); steps++ {
			m = m.Parent
		}
		if m.Type == theory.MentionNone || b.mentionDone[m.Index] {
			continue
		}
		res, err := b.resolveMention(m, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}

	b.roots = append(b.roots, out...)
	b.log.Debug("built sentence forest",
		"document", b.doc.ID, "sentence", b.sent.Index,
		"roots", len(out), "nodes", len(b.nodes))
	return out, nil
}

// FromMention builds the nodes representing a single mention.
func (b *Builder) FromMention(m *theory.Mention) ([]*propnode.Node, error) {
	if err := b.checkMention(m); err != nil {
		return nil, err
	}
	res, err := b.resolveMention(m, nil)
	if err != nil {
		return nil, err
	}
	b.roots = append(b.roots, res...)
	return res, nil
}

// FromProposition builds the nodes representing a single proposition.
func (b *Builder) FromProposition(p *theory.Proposition) ([]*propnode.Node, error) {
	if p == nil || p.Index < 0 || p.Index >= len(b.sent.Propositions) || b.sent.Propositions[p.Index] != p {
		return nil, fmt.Errorf("proposition is not part of sentence %d: %w", b.sent.Index, internalerr.ErrInvalidInput)
	}
	res, err := b.resolveProposition(p, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	b.roots = append(b.roots, res...)
	return res, nil
}

func (b *Builder) checkMention(m *theory.Mention) error {
	if m == nil || m.Index < 0 || m.Index >= len(b.sent.Mentions) || b.sent.Mentions[m.Index] != m {
		return fmt.Errorf("mention is not part of sentence %d: %w", b.sent.Index, internalerr.ErrInvalidInput)
	}
	return nil
}

// edges accumulates the children and roles of a node under construction.
type edges struct {
	children []*propnode.Node
	roles    []string
}

func (e *edges) add(nodes []*propnode.Node, role string) {
	for _, n := range nodes {
		e.children = append(e.children, n)
		e.roles = append(e.roles, role)
	}
}

func (e edges) clone() edges {
	return edges{
		children: append([]*propnode.Node(nil), e.children...),
		roles:    append([]string(nil), e.roles...),
	}
}

func (b *Builder) build(preds predicate.Set, e edges, prop *theory.Proposition, ment *theory.Mention, syn *theory.SynNode) (*propnode.Node, error) {
	n, err := b.arena.NewNode(propnode.Spec{
		Sentence:    b.sent.Index,
		Predicates:  preds,
		Children:    e.children,
		Roles:       e.roles,
		Proposition: prop,
		Mention:     ment,
		SynNode:     syn,
	})
	if err != nil {
		return nil, fmt.Errorf("sentence %d: %w", b.sent.Index, err)
	}
	b.nodes = append(b.nodes, n)
	return n, nil
}

func (b *Builder) leaf(t predicate.Type, syn *theory.SynNode) (*propnode.Node, error) {
	preds := predicate.Set{}
	if sym := strings.ToLower(predicate.Normalize(b.sent.Text(syn))); b.opts.Filter.Valid(sym) {
		preds[predicate.New(t, sym, false)] = 1.0
	}
	return b.build(preds, edges{}, nil, nil, syn)
}

func (b *Builder) resolveProposition(p *theory.Proposition, inherited *edges, inheritedPreds predicate.Set, defined *theory.Mention) ([]*propnode.Node, error) {
	if b.propDone[p.Index] || b.propBusy[p.Index] {
		return b.propRes[p.Index], nil
	}
	b.propBusy[p.Index] = true
	defer func() { b.propBusy[p.Index] = false }()

	isVerb := p.Type.IsVerb()
	isMod := p.Type == theory.ModifierPred

	preds := predicate.Set{}
	if inheritedPreds != nil {
		preds = inheritedPreds.Clone()
	}
	if (isVerb || isMod) && p.PredSymbol != "" {
		t := predicate.Mod
		if isVerb {
			t = predicate.Verb
		}
		if sym := predicate.Normalize(p.PredSymbol); b.opts.Filter.Valid(sym) {
			preds[predicate.New(t, sym, p.Negation != nil)] = 1.0
		}
	}

	var e edges
	if inherited != nil {
		e = inherited.clone()
	}
	for _, attached := range []struct {
		syn  *theory.SynNode
		typ  predicate.Type
		role string
	}{
		{p.Particle, predicate.Particle, theory.RoleParticle},
		{p.Adverb, predicate.Adv, theory.RoleAdv},
		{p.Modal, predicate.Modal, theory.RoleModal},
	} {
		if attached.syn == nil {
			continue
		}
		n, err := b.leaf(attached.typ, attached.syn)
		if err != nil {
			return nil, err
		}
		e.add([]*propnode.Node{n}, attached.role)
	}

	for _, a := range p.Args {
		// a modifier's <ref> argument is the mention it modifies
		if isMod && a.Role == theory.RoleRef {
			continue
		}
		switch {
		case a.Mention != nil:
			res, err := b.resolveMention(a.Mention, nil)
			if err != nil {
				return nil, err
			}
			e.add(res, CompoundRole(a.Mention.Node, a.Role))
		case a.Proposition != nil:
			res, err := b.resolveProposition(a.Proposition, nil, nil, nil)
			if err != nil {
				return nil, err
			}
			e.add(res, CompoundRole(a.Proposition.PredHead, a.Role))
		}
	}

	var res []*propnode.Node
	// A modifier sharing its head with a mention is represented by that
	// mention, which takes over the modifier's children.
	if isMod && p.PredHead != nil {
		for _, m := range b.sent.Mentions {
			if m.Head() != p.PredHead {
				continue
			}
			mres, err := b.resolveMention(m, &e)
			if err != nil {
				return nil, err
			}
			res = append(res, mres...)
		}
	}

	if len(res) == 0 && (len(preds) > 0 || len(e.children) > 0) {
		n, err := b.build(preds, e, p, defined, nil)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}

	b.propRes[p.Index] = res
	b.propDone[p.Index] = true
	return res, nil
}
