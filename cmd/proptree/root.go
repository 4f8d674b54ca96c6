package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/proptree/pkg/proptree"
	"github.com/cognicore/proptree/pkg/proptree/config"
	"github.com/cognicore/proptree/pkg/proptree/match"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

const version = "v0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "proptree",
	Short: "Build proposition trees and score pattern matches",
	Long: `proptree converts resolved sentence analyses (parse trees, mentions,
propositions, entities) into proposition-tree forests, and scores how well
a pattern document is matched by each sentence of other documents.

Documents are read in the YAML analysis format. Tables (confusion, weights,
stoplist, lexicon, names) are optional and fall back to built-in defaults.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "proptree %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./proptree.yaml or $HOME/.proptree/config.yaml)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("confusion", "", "confusion tables (YAML)")
	pf.String("weights", "", "predicate weights (YAML)")
	pf.String("stoplist", "", "predicate stoplist (YAML)")
	pf.String("lexicon", "", "synonym lexicon (YAML)")
	pf.String("names", "", "equivalent-name dictionary (YAML or SQLite)")
	pf.Bool("no-collapse", false, "keep redundant preposition modifiers as separate nodes")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("tables.confusion", pf.Lookup("confusion"))
	_ = viper.BindPFlag("tables.weights", pf.Lookup("weights"))
	_ = viper.BindPFlag("tables.stoplist", pf.Lookup("stoplist"))
	_ = viper.BindPFlag("tables.lexicon", pf.Lookup("lexicon"))
	_ = viper.BindPFlag("names.path", pf.Lookup("names"))

	viper.SetDefault("collapse_redundant_modifiers", true)
	viper.SetDefault("expansion.stem_weight", 0.9)
	viper.SetDefault("expansion.synonym_weight", 0.8)
	viper.SetDefault("expansion.coref_weight", 0.7)
	viper.SetDefault("expansion.name_min_score", 0.5)
	viper.SetDefault("match.kind", "full")
	viper.SetDefault("match.multiplicative", false)
	viper.SetDefault("match.roots_only", false)
	viper.SetDefault("cache.ttl", "0s")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.proptree")
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("proptree")
	}

	// PROPTREE_MATCH_KIND overrides match.kind and so on.
	viper.SetEnvPrefix("PROPTREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// newLogger builds the process logger. Library packages only log at debug.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// newEngine assembles an engine from the loaded tables and viper settings.
func newEngine(ctx context.Context, cmd *cobra.Command) (*proptree.Engine, *config.Components, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return nil, nil, nil, err
	}

	loader := config.Loader{
		ConfusionPath: viper.GetString("tables.confusion"),
		WeightsPath:   viper.GetString("tables.weights"),
		StoplistPath:  viper.GetString("tables.stoplist"),
		LexiconPath:   viper.GetString("tables.lexicon"),
		NamesPath:     viper.GetString("names.path"),
	}
	comp, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	kind, err := match.ParseKind(viper.GetString("match.kind"))
	if err != nil {
		return nil, nil, nil, err
	}

	opts := proptree.DefaultOptions().WithComponents(comp)
	opts.Logger = logger
	opts.Builder.CollapseRedundantModifiers = viper.GetBool("collapse_redundant_modifiers")
	if noCollapse, _ := cmd.Flags().GetBool("no-collapse"); noCollapse {
		opts.Builder.CollapseRedundantModifiers = false
	}
	opts.Expand.StemWeight = viper.GetFloat64("expansion.stem_weight")
	opts.Expand.SynonymWeight = viper.GetFloat64("expansion.synonym_weight")
	opts.Expand.CorefWeight = viper.GetFloat64("expansion.coref_weight")
	opts.Expand.NameMinScore = viper.GetFloat64("expansion.name_min_score")
	opts.Kind = kind
	opts.Multiplicative = viper.GetBool("match.multiplicative")
	opts.RootsOnly = viper.GetBool("match.roots_only")
	opts.CacheTTL = viper.GetDuration("cache.ttl")

	logger.Debug("engine configured",
		"kind", kind.String(), "multiplicative", opts.Multiplicative,
		"lexicon", comp.Lexicon != nil, "names", comp.Names.Len())
	return proptree.New(opts), comp, logger, nil
}

// loadDocuments reads YAML documents and JSONL corpora in argument order.
func loadDocuments(paths []string, logger *slog.Logger) ([]*theory.Document, error) {
	docs := make([]*theory.Document, 0, len(paths))
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".jsonl") {
			corpus, err := theory.LoadCorpus(p, logger)
			if err != nil {
				return nil, err
			}
			docs = append(docs, corpus...)
			continue
		}
		doc, err := theory.LoadDocument(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if doc.ID == "" {
			doc.ID = p
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
