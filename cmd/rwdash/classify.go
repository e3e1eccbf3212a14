package main

import (
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/spf13/cobra"
)

var classifyKeywords string

func init() {
	classifyCmd.Flags().StringVar(&classifyKeywords, "keywords", "", "Directory of <Category>.txt keyword files (default from config)")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <reason>...",
	Short: "Show the category assigned to retraction reasons",
	Long: `Classify one or more retraction reason strings with the configured
keyword files and print the resulting category.

Examples:
  rwdash classify "+Plagiarism of Text;+Paper Mill;"
  rwdash classify --human "+Error in Data;"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runClassify,
}

// ClassifyResult is one classified reason.
type ClassifyResult struct {
	Reason   string            `json:"reason"`
	Category classify.Category `json:"category"`
}

func runClassify(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	dir := cfg.KeywordsDir
	if classifyKeywords != "" {
		dir = classifyKeywords
	}

	rules, err := classify.LoadDir(dir, newLogger(cfg))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	results := make([]ClassifyResult, 0, len(args))
	for _, reason := range args {
		results = append(results, ClassifyResult{Reason: reason, Category: rules.Classify(reason)})
	}

	if !humanOutput {
		outputJSON(results)
		return
	}
	for _, r := range results {
		outputHuman("%-12s %s\n", r.Category, r.Reason)
	}
}
