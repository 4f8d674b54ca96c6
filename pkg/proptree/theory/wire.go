package theory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
)

// Wire format: every cross reference is an index into the enclosing list.
// Optional references are omitted rather than set to a sentinel.
//
//	id: doc-1
//	sentences:
//	  - tokens: [John, attacked, the, bank]
//	    parse:
//	      - {tag: S, start: 0, end: 3, head: 1, children: [1, 3]}
//	      - {tag: NP, start: 0, end: 0, children: [2]}
//	      - {tag: NPP, word: John, start: 0, end: 0}
//	      ...
//	    mentions:
//	      - {type: name, entity_type: PER, node: 1}
//	    propositions:
//	      - type: verb
//	        pred: attack
//	        head: 4
//	        args:
//	          - {role: <sub>, mention: 0}
//	entities:
//	  - {id: 0, type: PER, mentions: [{sentence: 0, mention: 0}]}
type wireDocument struct {
	ID        string         `yaml:"id"`
	Sentences []wireSentence `yaml:"sentences"`
	Entities  []wireEntity   `yaml:"entities"`
}

type wireSentence struct {
	Tokens       []string          `yaml:"tokens"`
	Parse        []wireNode        `yaml:"parse"`
	Mentions     []wireMention     `yaml:"mentions"`
	Propositions []wireProposition `yaml:"propositions"`
}

type wireNode struct {
	Tag      string `yaml:"tag"`
	Word     string `yaml:"word"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Head     int    `yaml:"head"`
	Children []int  `yaml:"children"`
}

type wireMention struct {
	Type       string `yaml:"type"`
	EntityType string `yaml:"entity_type"`
	Node       *int   `yaml:"node"`
	Head       *int   `yaml:"head"`
	Parent     *int   `yaml:"parent"`
	Children   []int  `yaml:"children"`
}

type wireProposition struct {
	Type     string    `yaml:"type"`
	Pred     string    `yaml:"pred"`
	Head     *int      `yaml:"head"`
	Particle *int      `yaml:"particle"`
	Adverb   *int      `yaml:"adverb"`
	Modal    *int      `yaml:"modal"`
	Negation *int      `yaml:"negation"`
	Args     []wireArg `yaml:"args"`
}

type wireArg struct {
	Role        string `yaml:"role"`
	Mention     *int   `yaml:"mention"`
	Proposition *int   `yaml:"proposition"`
}

type wireEntity struct {
	ID       int          `yaml:"id"`
	Type     string       `yaml:"type"`
	Mentions []MentionRef `yaml:"mentions"`
}

// LoadDocument reads a YAML-encoded document analysis.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a YAML-encoded document analysis and resolves all index
// references into a pointer graph.
func Decode(data []byte) (*Document, error) {
	var wd wireDocument
	if err := yaml.Unmarshal(data, &wd); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &Document{ID: wd.ID}
	for i, ws := range wd.Sentences {
		s, err := decodeSentence(i, ws)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		doc.Sentences = append(doc.Sentences, s)
	}

	for _, we := range wd.Entities {
		for _, ref := range we.Mentions {
			if _, ok := doc.Mention(ref); !ok {
				return nil, fmt.Errorf("entity %d: mention %+v: %w", we.ID, ref, internalerr.ErrInvalidInput)
			}
		}
		doc.Entities = append(doc.Entities, &Entity{
			ID:       we.ID,
			Type:     we.Type,
			Mentions: append([]MentionRef(nil), we.Mentions...),
		})
	}
	return doc, nil
}

func decodeSentence(index int, ws wireSentence) (*Sentence, error) {
	s := &Sentence{Index: index, Tokens: ws.Tokens}

	nodes := make([]*SynNode, len(ws.Parse))
	for i, wn := range ws.Parse {
		nodes[i] = &SynNode{ID: i, Tag: wn.Tag, Word: wn.Word, Start: wn.Start, End: wn.End, HeadIdx: wn.Head}
	}
	for i, wn := range ws.Parse {
		for _, c := range wn.Children {
			if c < 0 || c >= len(nodes) || c == i {
				return nil, fmt.Errorf("parse node %d child %d: %w", i, c, internalerr.ErrInvalidInput)
			}
			if nodes[c].Parent != nil {
				return nil, fmt.Errorf("parse node %d has two parents: %w", c, internalerr.ErrInvalidInput)
			}
			nodes[c].Parent = nodes[i]
			nodes[i].Children = append(nodes[i].Children, nodes[c])
		}
	}
	for i, n := range nodes {
		steps := 0
		for p := n.Parent; p != nil; p = p.Parent {
			if steps++; steps > len(nodes) {
				return nil, fmt.Errorf("parse node %d is on a cycle: %w", i, internalerr.ErrInvalidInput)
			}
		}
	}
	for _, n := range nodes {
		if n.IsPreterminal() && n.Word == "" && n.Start >= 0 && n.Start < len(s.Tokens) {
			n.Word = s.Tokens[n.Start]
		}
		if n.Parent == nil && s.Root == nil {
			s.Root = n
		}
	}

	synRef := func(p *int) (*SynNode, error) {
		if p == nil {
			return nil, nil
		}
		if *p < 0 || *p >= len(nodes) {
			return nil, fmt.Errorf("parse node %d: %w", *p, internalerr.ErrInvalidInput)
		}
		return nodes[*p], nil
	}

	s.Mentions = make([]*Mention, len(ws.Mentions))
	for i, wm := range ws.Mentions {
		mt, ok := ParseMentionType(wm.Type)
		if !ok {
			return nil, fmt.Errorf("mention %d type %q: %w", i, wm.Type, internalerr.ErrInvalidInput)
		}
		s.Mentions[i] = &Mention{Index: i, Type: mt, EntityType: wm.EntityType}
	}
	for i, wm := range ws.Mentions {
		m := s.Mentions[i]
		var err error
		if m.Node, err = synRef(wm.Node); err != nil {
			return nil, fmt.Errorf("mention %d: %w", i, err)
		}
		if m.HeadNode, err = synRef(wm.Head); err != nil {
			return nil, fmt.Errorf("mention %d: %w", i, err)
		}
		if wm.Parent != nil {
			if *wm.Parent < 0 || *wm.Parent >= len(s.Mentions) {
				return nil, fmt.Errorf("mention %d parent %d: %w", i, *wm.Parent, internalerr.ErrInvalidInput)
			}
			m.Parent = s.Mentions[*wm.Parent]
		}
		for _, c := range wm.Children {
			if c < 0 || c >= len(s.Mentions) {
				return nil, fmt.Errorf("mention %d child %d: %w", i, c, internalerr.ErrInvalidInput)
			}
			m.Children = append(m.Children, s.Mentions[c])
		}
	}
	for i, m := range s.Mentions {
		steps := 0
		for p := m.Parent; p != nil; p = p.Parent {
			if steps++; steps > len(s.Mentions) {
				return nil, fmt.Errorf("mention %d is on a parent cycle: %w", i, internalerr.ErrInvalidInput)
			}
		}
	}

	s.Propositions = make([]*Proposition, len(ws.Propositions))
	for i, wp := range ws.Propositions {
		s.Propositions[i] = &Proposition{Index: i, Type: PredType(wp.Type), PredSymbol: wp.Pred}
	}
	for i, wp := range ws.Propositions {
		p := s.Propositions[i]
		var err error
		for _, f := range []struct {
			dst **SynNode
			src *int
		}{
			{&p.PredHead, wp.Head},
			{&p.Particle, wp.Particle},
			{&p.Adverb, wp.Adverb},
			{&p.Modal, wp.Modal},
			{&p.Negation, wp.Negation},
		} {
			if *f.dst, err = synRef(f.src); err != nil {
				return nil, fmt.Errorf("proposition %d: %w", i, err)
			}
		}
		for j, wa := range wp.Args {
			arg := Argument{Role: wa.Role}
			switch {
			case wa.Mention != nil:
				if *wa.Mention < 0 || *wa.Mention >= len(s.Mentions) {
					return nil, fmt.Errorf("proposition %d arg %d: %w", i, j, internalerr.ErrInvalidInput)
				}
				arg.Mention = s.Mentions[*wa.Mention]
			case wa.Proposition != nil:
				if *wa.Proposition < 0 || *wa.Proposition >= len(s.Propositions) {
					return nil, fmt.Errorf("proposition %d arg %d: %w", i, j, internalerr.ErrInvalidInput)
				}
				arg.Proposition = s.Propositions[*wa.Proposition]
			}
			p.Args = append(p.Args, arg)
		}
	}
	return s, nil
}
