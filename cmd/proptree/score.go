package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/proptree/pkg/proptree"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

var scoreCmd = &cobra.Command{
	Use:   "score --pattern <query.yaml> <doc.yaml|corpus.jsonl>...",
	Short: "Score how well each sentence of each document matches a pattern",
	Long: `Score compiles the pattern document into a query forest and matches it
against every sentence of every document. Documents are processed in
parallel; results are printed in argument order.

Example:
  proptree score --pattern query.yaml news1.yaml news2.yaml
  proptree score --pattern query.yaml corpus.jsonl
  proptree score --pattern query.yaml news.yaml --top 3 --explain
  PROPTREE_MATCH_KIND=edge proptree score --pattern query.yaml news.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("pattern", "", "pattern document (required)")
	scoreCmd.Flags().Int("top", 0, "print only the best k sentences per document (0 = all)")
	scoreCmd.Flags().Bool("explain", false, "print which candidate covered each pattern node")
	scoreCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of documents scored in parallel")
	_ = scoreCmd.MarkFlagRequired("pattern")
}

type docResult struct {
	doc    *theory.Document
	scores []proptree.SentenceScore
}

func runScore(cmd *cobra.Command, args []string) error {
	patternPath, _ := cmd.Flags().GetString("pattern")
	top, _ := cmd.Flags().GetInt("top")
	explain, _ := cmd.Flags().GetBool("explain")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	engine, _, logger, err := newEngine(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	patternDocs, err := loadDocuments([]string{patternPath}, logger)
	if err != nil {
		return err
	}
	pattern, err := engine.CompilePattern(patternDocs[0])
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args, logger)
	if err != nil {
		return err
	}

	results, err := scoreAll(engine, pattern, docs, concurrency)
	if err != nil {
		return err
	}
	for _, r := range results {
		writeScores(cmd.OutOrStdout(), r, top, explain)
	}
	return nil
}

// scoreAll scores docs in parallel. Each goroutine builds its own forest and
// matcher; the compiled pattern is only read.
func scoreAll(engine *proptree.Engine, pattern *proptree.Pattern, docs []*theory.Document, concurrency int) ([]docResult, error) {
	results := make([]docResult, len(docs))
	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			f, err := engine.Forest(doc)
			if err != nil {
				return fmt.Errorf("document %s: %w", doc.ID, err)
			}
			scores, err := engine.Score(pattern, f)
			if err != nil {
				return fmt.Errorf("document %s: %w", doc.ID, err)
			}
			results[i] = docResult{doc: doc, scores: scores}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeScores(w io.Writer, r docResult, top int, explain bool) {
	for _, s := range proptree.Best(r.scores, top) {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%s\n", r.doc.ID, s.Sentence, s.Score, sentenceText(r.doc, s.Sentence))
		if !explain {
			continue
		}
		for _, a := range s.Explain {
			fmt.Fprintf(w, "\t%s\t%.4f\t%s\n", a.Pattern, a.Covered, a.Covering)
		}
	}
}

func sentenceText(doc *theory.Document, i int) string {
	s := doc.Sentences[i]
	if s.Root == nil {
		return ""
	}
	return s.Text(s.Root)
}
