package builder

import (
	"strings"

	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

func (b *Builder) resolveMention(m *theory.Mention, inherited *edges) ([]*propnode.Node, error) {
	if b.mentionDone[m.Index] {
		return b.mentionRes[m.Index], nil
	}
	// Marked before recursing: a definitional proposition refers back to
	// this mention through its <ref> argument.
	b.mentionDone[m.Index] = true

	preds := MentionPredicates(b.sent, m, b.opts.Filter)
	var e edges
	if inherited != nil {
		e = inherited.clone()
	}

	if err := b.attachModifiers(m, &e); err != nil {
		return nil, err
	}
	if err := b.attachTitleArguments(m, &e); err != nil {
		return nil, err
	}

	var res []*propnode.Node
	if m.Type == theory.MentionList || m.Type == theory.MentionAppo {
		// Members replace any definitional propositions.
		for _, c := range m.Children {
			cres, err := b.resolveMention(c, nil)
			if err != nil {
				return nil, err
			}
			e.add(cres, theory.RoleMember)
		}
		if len(e.children) > 0 || m.Head() != nil {
			n, err := b.build(nil, e, nil, m, m.Node)
			if err != nil {
				return nil, err
			}
			res = append(res, n)
		}
	} else {
		for _, dp := range b.sent.Propositions {
			if !dp.Type.IsDefinitional() || len(dp.Args) == 0 || dp.Args[0].Mention != m {
				continue
			}
			dres, err := b.resolveProposition(dp, &e, preds, m)
			if err != nil {
				return nil, err
			}
			res = append(res, dres...)
		}
		if len(res) == 0 && len(preds) > 0 {
			n, err := b.build(preds, e, nil, m, m.Node)
			if err != nil {
				return nil, err
			}
			res = append(res, n)
		}
	}

	b.mentionRes[m.Index] = res
	return res, nil
}

// attachModifiers resolves the modifier and possessive propositions whose
// first argument is m.
func (b *Builder) attachModifiers(m *theory.Mention, e *edges) error {
	for _, mp := range b.sent.Propositions {
		if len(mp.Args) == 0 || mp.Args[0].Mention != m {
			continue
		}
		if mp.Type != theory.ModifierPred && mp.Type != theory.PossPred {
			continue
		}
		// the mention already stands for a modifier sharing its head
		if mp.PredHead != nil && mp.PredHead == m.Head() && len(mp.Args) == 1 {
			continue
		}

		if b.opts.CollapseRedundantModifiers && mp.PredHead != nil && len(mp.Args) == 2 &&
			(mp.Args[1].Role == mp.PredSymbol || mp.Args[1].Role == theory.RolePoss) {
			arg := mp.Args[1]
			role := arg.Role
			switch {
			case arg.Mention != nil:
				if role != theory.RolePoss {
					role = CompoundRole(arg.Mention.Node, mp.PredSymbol)
				}
				res, err := b.resolveMention(arg.Mention, nil)
				if err != nil {
					return err
				}
				e.add(res, role)
			case arg.Proposition != nil:
				if role != theory.RolePoss {
					role = CompoundRole(arg.Proposition.PredHead, mp.PredSymbol)
				}
				res, err := b.resolveProposition(arg.Proposition, nil, nil, nil)
				if err != nil {
					return err
				}
				e.add(res, role)
			}
			continue
		}

		res, err := b.resolveProposition(mp, nil, nil, nil)
		if err != nil {
			return err
		}
		e.add(res, theory.RoleMod)
	}
	return nil
}

// attachTitleArguments handles person titles such as "President X of Y": the
// title is a separate noun proposition over a mention nested directly in m.
// Its non-title mention arguments move to m and the title itself is dropped.
func (b *Builder) attachTitleArguments(m *theory.Mention, e *edges) error {
	head := m.Head()
	if m.Node == nil || head == nil {
		return nil
	}
	ent := b.doc.EntityByMention(theory.MentionRef{Sentence: b.sent.Index, Mention: m.Index})

	for _, tp := range b.sent.Propositions {
		if tp.Type != theory.NounPred || len(tp.Args) == 0 || tp.Args[0].Mention == nil {
			continue
		}
		title := tp.Args[0].Mention
		if !title.IsPerson() || title.Node == nil || title.Node.Parent != m.Node {
			continue
		}
		if b.doc.EntityByMention(theory.MentionRef{Sentence: b.sent.Index, Mention: title.Index}) != ent {
			continue
		}
		if title.Node.End >= head.Start {
			continue
		}
		for _, a := range tp.Args[1:] {
			if a.Mention == nil {
				continue
			}
			res, err := b.resolveMention(a.Mention, nil)
			if err != nil {
				return err
			}
			e.add(res, a.Role)
		}
		b.mentionDone[title.Index] = true
	}
	return nil
}

// MentionPredicates returns the predicates a mention contributes on its own:
// the name text for names, and the lowercased head word for descriptors,
// partitives and pronouns. Other mention types contribute nothing.
func MentionPredicates(s *theory.Sentence, m *theory.Mention, f *predicate.Filter) predicate.Set {
	preds := predicate.Set{}
	var (
		t   predicate.Type
		sym string
	)
	switch m.Type {
	case theory.MentionName:
		node := m.HeadNode
		if node == nil {
			node = m.Node
		}
		if node == nil {
			return preds
		}
		t, sym = predicate.Name, predicate.Normalize(s.Text(node))
	case theory.MentionDesc, theory.MentionPart:
		if m.Head() == nil {
			return preds
		}
		t, sym = predicate.Desc, strings.ToLower(predicate.Normalize(m.Head().HeadWord()))
	case theory.MentionPron:
		if m.Head() == nil {
			return preds
		}
		t, sym = predicate.Pron, strings.ToLower(predicate.Normalize(m.Head().HeadWord()))
	default:
		return preds
	}
	if f.Valid(sym) {
		preds[predicate.New(t, sym, false)] = 1.0
	}
	return preds
}

// CompoundRole refines role when node sits under a prepositional phrase: it
// climbs while the ancestors share node's head word, and if the first
// ancestor with a different head is a PP the role becomes its prepositions'
// words joined by "_".
func CompoundRole(node *theory.SynNode, role string) string {
	if node == nil {
		return role
	}
	head := node.HeadWord()
	cur := node
	for cur.Parent != nil && cur.HeadWord() == head {
		cur = cur.Parent
	}
	if cur.Tag != "PP" {
		return role
	}
	var parts []string
	for _, c := range cur.Children {
		if c.Tag == "IN" || c.Tag == "TO" {
			parts = append(parts, strings.ToLower(c.HeadWord()))
		}
	}
	if len(parts) == 0 {
		return role
	}
	return strings.Join(parts, "_")
}
