package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/internal/config"
	"github.com/dispatchd/dispatchd/pkg/models"
)

var classifyLexiconPath string

var classifyCmd = &cobra.Command{
	Use:   "classify <text>...",
	Short: "Classify text without submitting a request",
	Long: `Classify scores the text against every category lexicon and prints
the per-category scores, confidence, and primary category. Nothing is
persisted and no agents run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyLexiconPath, "lexicons", "", "Lexicon YAML file (defaults to config, then built-ins)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	lexicons := classifier.DefaultLexicons()

	path := classifyLexiconPath
	if path == "" {
		if cfg, err := config.Load(); err == nil {
			path = cfg.Lexicon.Path
		}
	}
	if path != "" {
		loaded, err := classifier.LoadLexicons(path)
		if err != nil {
			return fmt.Errorf("load lexicons: %w", err)
		}
		lexicons = loaded
	}

	clf := classifier.New(classifier.StaticSource(lexicons))
	result := clf.Classify(strings.Join(args, " "))

	fmt.Printf("%s %s %s\n", bold("primary"), cyan(string(result.Primary)),
		gray(fmt.Sprintf("(confidence %.2f)", result.Confidence)))
	fmt.Printf("\n%s\n", bold("scores"))
	for _, cat := range models.Categories() {
		score := result.Score(cat)
		marker := " "
		if cat == result.Primary {
			marker = green("*")
		}
		fmt.Printf(" %s %-18s %.3f\n", marker, cat, score)
	}

	return nil
}
