package cli

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

var (
	evalExpected []string
	evalSuite    string
	evalLimit    int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [query]",
	Short: "Evaluate search quality",
	Long: heredoc.Doc(`
		Runs a search and compares the documents behind the results with the
		expected documents. Expected entries are document IDs or source paths.

		Prints relevance (mean score of results from expected documents),
		precision, recall and F1.

		With --suite, runs every case of a YAML suite instead:

		  cases:
		    - query: "machine learning"
		      expected: ["notes/ml.md"]
		      limit: 5
	`),
	Example: heredoc.Doc(`
		$ minirag evaluate "machine learning" --expected notes/ml.md -d notes/
		$ minirag evaluate --suite suites/basic.yaml -d notes/
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringSliceVarP(&evalExpected, "expected", "e", nil, "expected document IDs or source paths (comma-separated)")
	evaluateCmd.Flags().StringVar(&evalSuite, "suite", "", "evaluation suite file or name")
	evaluateCmd.Flags().IntVarP(&evalLimit, "limit", "n", 0, "results per query (0 uses the evaluation.limit setting)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	if evalSuite != "" {
		if len(args) > 0 {
			return errors.New("give either a query or --suite, not both")
		}
		return runEvaluateSuite(cmd)
	}

	if len(args) == 0 {
		return errors.New("a query is required unless --suite is given")
	}

	query := args[0]
	cmd.Printf("Evaluating search for: %s\n", query)
	cmd.Printf("Expected documents: %v\n", evalExpected)

	report, err := evaluationService.EvaluateQuery(commandContext(cmd), domain.EvaluationCase{
		Query:    query,
		Expected: evalExpected,
		Limit:    evalLimit,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	cmd.Println("Evaluation Results:")
	printMetrics(cmd, report.Metrics)
	return nil
}

func runEvaluateSuite(cmd *cobra.Command) error {
	if suiteStore == nil {
		return errors.New("suite store not configured")
	}

	cases, err := suiteStore.Load(evalSuite)
	if err != nil {
		return fmt.Errorf("failed to load suite: %w", err)
	}
	if evalLimit > 0 {
		for i := range cases {
			if cases[i].Limit == 0 {
				cases[i].Limit = evalLimit
			}
		}
	}

	reports, err := evaluationService.EvaluateSuite(commandContext(cmd), cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	cmd.Printf("Evaluated %d cases from %s\n\n", len(reports), evalSuite)
	for i := range reports {
		r := &reports[i]
		cmd.Printf("  %d. %s\n", i+1, r.Case.Query)
		cmd.Printf("     P=%.3f R=%.3f F1=%.3f Rel=%.3f (%d results)\n",
			r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1, r.Metrics.Relevance, len(r.Results))
	}

	cmd.Println()
	cmd.Println("Mean:")
	printMetrics(cmd, domain.MeanMetrics(reports))
	return nil
}

func printMetrics(cmd *cobra.Command, m domain.EvaluationMetrics) {
	cmd.Printf("  Relevance: %.3f\n", m.Relevance)
	cmd.Printf("  Precision: %.3f\n", m.Precision)
	cmd.Printf("  Recall: %.3f\n", m.Recall)
	cmd.Printf("  F1 Score: %.3f\n", m.F1)
}
