package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/corpus"
	"github.com/cognicore/proptree/pkg/proptree/lexicon"
)

var statsCmd = &cobra.Command{
	Use:   "stats <doc.yaml|corpus.jsonl>...",
	Short: "Estimate predicate weights and related terms from a corpus",
	Long: `Stats builds every document, counts in how many sentences each predicate
symbol occurs, and prints a YAML file with inverse-frequency weights and
co-occurrence based related terms. The output is accepted by both --weights
and --lexicon.

Example:
  proptree stats corpus.jsonl > tables.yaml
  proptree stats corpus.jsonl --min-weight 0.2 --min-support 3 --min-npmi 0.4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Float64("min-weight", 0.1, "lower bound for estimated weights")
	statsCmd.Flags().Int64("min-support", 2, "minimum sentences shared by a related pair")
	statsCmd.Flags().Float64("min-npmi", 0.3, "minimum normalized PMI of a related pair")
}

type relatedEntry struct {
	Term    string             `yaml:"term"`
	Related []lexicon.Relation `yaml:"related"`
}

type statsOutput struct {
	Weights map[string]float64 `yaml:"weights"`
	Related []relatedEntry     `yaml:"related,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	minWeight, _ := cmd.Flags().GetFloat64("min-weight")
	minSupport, _ := cmd.Flags().GetInt64("min-support")
	minNPMI, _ := cmd.Flags().GetFloat64("min-npmi")

	engine, comp, logger, err := newEngine(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args, logger)
	if err != nil {
		return err
	}

	counter := corpus.NewCounter(comp.Filter)
	for _, doc := range docs {
		f, err := engine.Forest(doc)
		if err != nil {
			return err
		}
		counter.AddForest(f)
	}
	logger.Info("counted corpus", "documents", len(docs), "sentences", counter.TotalUnits())

	lex := lexicon.New()
	corpus.AddToLexicon(lex, counter.Related(minSupport, minNPMI))

	out := statsOutput{Weights: counter.Weights(minWeight)}
	for _, term := range lex.Terms() {
		out.Related = append(out.Related, relatedEntry{Term: term, Related: lex.Related(term)})
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
