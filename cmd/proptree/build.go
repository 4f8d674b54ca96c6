package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/proptree/pkg/proptree/forest"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

var buildCmd = &cobra.Command{
	Use:   "build <doc.yaml|corpus.jsonl>...",
	Short: "Build and print the proposition forest of each document",
	Long: `Build converts each document into its expanded proposition forest and
prints every sentence's trees.

Example:
  proptree build news.yaml
  proptree build news.yaml --edges
  proptree build news.yaml --synonyms --no-expand`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("edges", false, "print one parent/role/child line per edge")
	buildCmd.Flags().Bool("synonyms", false, "print every extended predicate with its weight")
	buildCmd.Flags().Bool("no-expand", false, "print base predicates only")
}

func runBuild(cmd *cobra.Command, args []string) error {
	edges, _ := cmd.Flags().GetBool("edges")
	synonyms, _ := cmd.Flags().GetBool("synonyms")
	noExpand, _ := cmd.Flags().GetBool("no-expand")

	engine, _, logger, err := newEngine(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args, logger)
	if err != nil {
		return err
	}

	opts := propnode.PrintOptions{Types: true, Synonyms: synonyms, ReplaceUnknown: true}
	out := cmd.OutOrStdout()
	for _, doc := range docs {
		build := engine.Forest
		if noExpand {
			build = engine.BaseForest
		}
		f, err := build(doc)
		if err != nil {
			return err
		}
		if err := printForest(out, f, opts, edges); err != nil {
			return err
		}
	}
	return nil
}

func printForest(w io.Writer, f *forest.DocForest, opts propnode.PrintOptions, edges bool) error {
	fmt.Fprintf(w, "# %s (%s)\n", f.DocumentID(), f.ID())
	for i := 0; i < f.NSentences(); i++ {
		roots, err := f.Sentence(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "## sentence %d: %d roots\n", i, len(roots))
		for _, r := range roots {
			if edges {
				err = r.DumpEdges(w, opts)
			} else {
				err = r.CompactPrint(w, opts)
				fmt.Fprintln(w)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
