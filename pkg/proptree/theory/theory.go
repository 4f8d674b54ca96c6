// Package theory models the already-resolved sentence analyses that proposition
// trees are built from: parse nodes, entity mentions, propositions and
// document-level entities. Values are treated as read-only once loaded.
package theory

import "strings"

// Argument roles produced by the upstream proposition finder.
const (
	RoleRef     = "<ref>"
	RoleSub     = "<sub>"
	RoleObj     = "<obj>"
	RoleIObj    = "<iobj>"
	RolePoss    = "<poss>"
	RoleTemp    = "<temp>"
	RoleLoc     = "<loc>"
	RoleMember  = "<member>"
	RoleUnknown = "<unknown>"
)

// Roles introduced when building proposition trees.
const (
	RoleMod      = "<mod>"
	RoleParticle = "<particle>"
	RoleAdv      = "<adv>"
	RoleModal    = "<modal>"
)

// SynNode is a constituent of a syntactic parse. Leaves are preterminals and
// carry the token they cover in Word.
type SynNode struct {
	ID       int
	Tag      string
	Word     string
	Start    int
	End      int
	HeadIdx  int
	Parent   *SynNode
	Children []*SynNode
}

// IsPreterminal reports whether the node has no constituent children.
func (n *SynNode) IsPreterminal() bool {
	return len(n.Children) == 0
}

// HeadChild returns the head constituent, or nil for preterminals.
func (n *SynNode) HeadChild() *SynNode {
	if n.IsPreterminal() {
		return nil
	}
	if n.HeadIdx < 0 || n.HeadIdx >= len(n.Children) {
		return n.Children[len(n.Children)-1]
	}
	return n.Children[n.HeadIdx]
}

// HeadPreterm follows head children down to a preterminal.
func (n *SynNode) HeadPreterm() *SynNode {
	cur := n
	for !cur.IsPreterminal() {
		cur = cur.HeadChild()
	}
	return cur
}

// HeadWord returns the word of the head preterminal.
func (n *SynNode) HeadWord() string {
	return n.HeadPreterm().Word
}

// MentionType classifies an entity mention.
type MentionType int

const (
	MentionNone MentionType = iota
	MentionName
	MentionDesc
	MentionPron
	MentionPart
	MentionAppo
	MentionList
	MentionNest
)

var mentionTypeNames = map[MentionType]string{
	MentionNone: "none",
	MentionName: "name",
	MentionDesc: "desc",
	MentionPron: "pron",
	MentionPart: "part",
	MentionAppo: "appo",
	MentionList: "list",
	MentionNest: "nest",
}

func (t MentionType) String() string {
	if s, ok := mentionTypeNames[t]; ok {
		return s
	}
	return "none"
}

// ParseMentionType maps a lowercase name to a MentionType.
func ParseMentionType(s string) (MentionType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range mentionTypeNames {
		if name == s {
			return t, true
		}
	}
	return MentionNone, false
}

// Mention is an entity mention within one sentence.
type Mention struct {
	Index      int
	Type       MentionType
	EntityType string
	Node       *SynNode
	HeadNode   *SynNode
	Parent     *Mention
	Children   []*Mention
}

// Head returns the mention's head constituent: the explicit head when one was
// supplied, else the head preterminal of the mention node.
func (m *Mention) Head() *SynNode {
	if m.HeadNode != nil {
		return m.HeadNode
	}
	if m.Node == nil {
		return nil
	}
	return m.Node.HeadPreterm()
}

// IsPerson reports whether the mention refers to a person.
func (m *Mention) IsPerson() bool {
	return strings.EqualFold(m.EntityType, "PER")
}

// PredType classifies a proposition.
type PredType string

const (
	VerbPred     PredType = "verb"
	CopulaPred   PredType = "copula"
	ModifierPred PredType = "modifier"
	NounPred     PredType = "noun"
	SetPred      PredType = "set"
	NamePred     PredType = "name"
	PronounPred  PredType = "pronoun"
	CompPred     PredType = "comp"
	LocPred      PredType = "loc"
	PossPred     PredType = "poss"
)

// IsVerb reports whether the proposition describes an action.
func (t PredType) IsVerb() bool {
	return t == VerbPred || t == CopulaPred || t == CompPred
}

// IsDefinitional reports whether the proposition defines a noun phrase.
func (t PredType) IsDefinitional() bool {
	return t == NounPred || t == PronounPred || t == SetPred || t == LocPred
}

// Argument links a proposition to a mention or another proposition.
type Argument struct {
	Role        string
	Mention     *Mention
	Proposition *Proposition
}

// Proposition is a predicate-argument structure within one sentence.
type Proposition struct {
	Index      int
	Type       PredType
	PredSymbol string
	PredHead   *SynNode
	Particle   *SynNode
	Adverb     *SynNode
	Modal      *SynNode
	Negation   *SynNode
	Args       []Argument
}

// Sentence bundles the analyses of one sentence.
type Sentence struct {
	Index        int
	Tokens       []string
	Root         *SynNode
	Mentions     []*Mention
	Propositions []*Proposition
}

// Text returns the tokens spanned by n joined with spaces.
func (s *Sentence) Text(n *SynNode) string {
	if n == nil {
		return ""
	}
	start, end := n.Start, n.End
	if start < 0 {
		start = 0
	}
	if end >= len(s.Tokens) {
		end = len(s.Tokens) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(s.Tokens[start:end+1], " ")
}

// MentionRef addresses a mention within a document.
type MentionRef struct {
	Sentence int `yaml:"sentence"`
	Mention  int `yaml:"mention"`
}

// Entity groups coreferent mentions.
type Entity struct {
	ID       int
	Type     string
	Mentions []MentionRef
}

// Document is the analysis of one document.
type Document struct {
	ID        string
	Sentences []*Sentence
	Entities  []*Entity
}

// EntityByMention returns the entity containing ref, or nil.
func (d *Document) EntityByMention(ref MentionRef) *Entity {
	for _, e := range d.Entities {
		for _, r := range e.Mentions {
			if r == ref {
				return e
			}
		}
	}
	return nil
}

// Mention resolves ref, reporting false when it is out of range.
func (d *Document) Mention(ref MentionRef) (*Mention, bool) {
	if ref.Sentence < 0 || ref.Sentence >= len(d.Sentences) {
		return nil, false
	}
	s := d.Sentences[ref.Sentence]
	if ref.Mention < 0 || ref.Mention >= len(s.Mentions) {
		return nil, false
	}
	return s.Mentions[ref.Mention], true
}
