package propnode

import (
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// PrintOptions controls CompactPrint and DumpEdges output.
type PrintOptions struct {
	Types          bool // append the predicate type
	Synonyms       bool // list every extended predicate with its weight
	ReplaceUnknown bool // print <unknown> roles as <mod>
}

func (n *Node) writeContent(b *strings.Builder, opts PrintOptions) {
	rep, ok := n.RepresentativePredicate()
	if ok {
		b.WriteString(rep.Symbol)
	} else {
		b.WriteString("???")
	}
	if opts.Types {
		b.WriteString("-")
		if ok {
			b.WriteString(string(rep.Type))
		} else {
			b.WriteString("???")
		}
	}
	if opts.Synonyms {
		b.WriteString(" {")
		for i, wp := range n.ext.Sorted() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s=%g", wp.Predicate.Symbol, wp.Weight)
		}
		b.WriteString("}")
	}
}

// CompactPrint writes a parenthesized rendering of the subtree rooted at n.
func (n *Node) CompactPrint(w io.Writer, opts PrintOptions) error {
	var b strings.Builder
	n.compactPrint(&b, opts, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func (n *Node) compactPrint(b *strings.Builder, opts PrintOptions, indent int) {
	b.WriteString("(")
	n.writeContent(b, opts)
	for i := range n.children {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("\t", indent))
		role := n.roles[i]
		if opts.ReplaceUnknown && role == theory.RoleUnknown {
			role = theory.RoleMod
		}
		b.WriteString(" " + role + ":")
		n.Child(i).compactPrint(b, opts, indent+1)
	}
	b.WriteString(")")
}

// DumpEdges writes one "parent <role> child" line per edge in the subtree.
func (n *Node) DumpEdges(w io.Writer, opts PrintOptions) error {
	var b strings.Builder
	n.dumpEdges(&b, opts)
	_, err := io.WriteString(w, b.String())
	return err
}

func (n *Node) dumpEdges(b *strings.Builder, opts PrintOptions) {
	for i := range n.children {
		kid := n.Child(i)
		n.writeContent(b, opts)
		b.WriteString("\t<" + strings.Trim(n.roles[i], "<>") + ">\t")
		kid.writeContent(b, opts)
		b.WriteString("\n")
		kid.dumpEdges(b, opts)
	}
}

func (n *Node) String() string {
	var b strings.Builder
	n.compactPrint(&b, PrintOptions{Types: true}, 0)
	return b.String()
}
