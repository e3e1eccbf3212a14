package main

import (
	"context"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pubref"
	"github.com/spf13/cobra"
)

var (
	resolveReference string
	resolveThreshold float64
)

func init() {
	resolveCmd.Flags().StringVar(&resolveReference, "reference", "", "Publication reference CSV (default from config)")
	resolveCmd.Flags().Float64Var(&resolveThreshold, "threshold", 0, "Minimum fuzzy similarity (default from config)")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <country>...",
	Short: "Resolve country names against the publication reference",
	Long: `Resolve dataset country spellings to the names used by the publication
reference table, showing which step matched and its score.

Examples:
  rwdash resolve Russia "Turks & Caicos Islands" Vietnam
  rwdash resolve --threshold 0.8 --human "Syria Arab"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	log := newLogger(cfg)

	ref := cfg.ReferenceCSV
	if resolveReference != "" {
		ref = resolveReference
	}
	threshold := cfg.MatchThreshold
	if resolveThreshold > 0 {
		threshold = resolveThreshold
	}

	table, err := pubref.Load(context.Background(), ref, log)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	r := country.NewResolver(table.Countries(), threshold)

	matches := make([]country.Match, 0, len(args))
	for _, name := range args {
		matches = append(matches, r.Resolve(name))
	}

	if !humanOutput {
		outputJSON(matches)
		return
	}
	for _, m := range matches {
		if !m.OK() {
			outputHuman("%s: no match\n", m.Source)
			continue
		}
		outputHuman("%s -> %s (%s, %.2f)\n", m.Source, m.Name, m.Method, m.Score)
	}
}
