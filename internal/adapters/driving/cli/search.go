package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search processed documents",
	Long: heredoc.Doc(`
		Scores every chunk by keyword overlap: the fraction of distinct query
		terms it contains. Matching ignores case. Results are ordered by score,
		then by chunk position. Chunks with no matching term are not returned.
	`),
	Example: heredoc.Doc(`
		$ minirag search "machine learning" -d notes/
		$ minirag search "neural networks" -n 3 --json -d notes/
	`),
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the search.limit setting)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResultJSON is the --json shape of a result.
type searchResultJSON struct {
	Rank       int      `json:"rank"`
	Score      float64  `json:"score"`
	DocumentID string   `json:"document_id"`
	ChunkID    string   `json:"chunk_id"`
	Position   int      `json:"position"`
	SourcePath string   `json:"source_path"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Highlights []string `json:"highlights,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(commandContext(cmd), query, domain.SearchOptions{Limit: searchLimit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	cmd.Printf("Searching for: %s\n", query)
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i := range results {
		r := &results[i]
		out = append(out, searchResultJSON{
			Rank:       r.Rank,
			Score:      r.Score,
			DocumentID: r.Chunk.DocumentID,
			ChunkID:    r.Chunk.ID,
			Position:   r.Chunk.Position,
			SourcePath: r.SourcePath,
			Title:      r.DocumentTitle,
			Content:    r.Chunk.Content,
			Highlights: r.Highlights,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Found %d results:\n", len(results))
	for i := range results {
		r := &results[i]
		cmd.Printf("  %d. [Score: %.3f] %s\n", r.Rank, r.Score, r.Chunk.Content)
		if r.SourcePath != "" {
			cmd.Printf("      Source: %s (chunk %d)\n", r.SourcePath, r.Chunk.Position)
		}
	}
	return nil
}
