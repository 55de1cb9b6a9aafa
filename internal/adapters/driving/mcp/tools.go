package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find matching chunks"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single ranked chunk.
type SearchResultOutput struct {
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

// EvaluateInput is the input schema for the evaluate tool.
type EvaluateInput struct {
	Query    string   `json:"query" jsonschema:"the search query to evaluate"`
	Expected []string `json:"expected" jsonschema:"document ids or source paths considered relevant"`
	Limit    int      `json:"limit,omitempty" jsonschema:"number of results to evaluate (default 5)"`
}

// EvaluateOutput is the output schema for the evaluate tool.
type EvaluateOutput struct {
	Relevance float64              `json:"relevance"`
	Precision float64              `json:"precision"`
	Recall    float64              `json:"recall"`
	F1        float64              `json:"f1"`
	Results   []SearchResultOutput `json:"results"`
}

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	Content    string `json:"content" jsonschema:"the document text"`
	SourcePath string `json:"source_path,omitempty" jsonschema:"where the text came from, used for the title and kind"`
	Strategy   string `json:"strategy,omitempty" jsonschema:"chunking strategy: fixed_size or paragraph"`
}

// DocumentOutput describes a stored document.
type DocumentOutput struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	SizeBytes  int    `json:"size_bytes"`
	WordCount  int    `json:"word_count"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// StatsInput is the input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalDocuments int `json:"total_documents"`
	TotalChunks    int `json:"total_chunks"`
	TotalSizeBytes int `json:"total_size_bytes"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Rank stored chunks by the fraction of query terms they contain",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Chunk a document and add it to the collection",
	}, s.handleProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List processed documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report document, chunk and byte totals",
	}, s.handleStats)

	if s.ports.Evaluation != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "evaluate",
			Description: "Score a query's results against the expected documents",
		}, s.handleEvaluate)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{Limit: input.Limit})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}, nil
}

// handleEvaluate handles the evaluate tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	if s.ports.Evaluation == nil {
		return nil, EvaluateOutput{}, ErrMissingEvaluationService
	}

	report, err := s.ports.Evaluation.EvaluateQuery(ctx, domain.EvaluationCase{
		Query:    input.Query,
		Expected: input.Expected,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	return nil, EvaluateOutput{
		Relevance: report.Metrics.Relevance,
		Precision: report.Metrics.Precision,
		Recall:    report.Metrics.Recall,
		F1:        report.Metrics.F1,
		Results:   toResultOutputs(report.Results),
	}, nil
}

// handleProcess handles the process_document tool invocation.
func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	var strategy domain.ChunkType
	if input.Strategy != "" {
		parsed, err := domain.ParseChunkType(input.Strategy)
		if err != nil {
			return nil, DocumentOutput{}, err
		}
		strategy = parsed
	}

	doc, err := s.ports.Document.ProcessContent(ctx, input.Content, input.SourcePath, strategy)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	summary, err := s.ports.Document.GetDetails(ctx, doc.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(summary), nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	summaries, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}
	docs := make([]DocumentOutput, 0)
	for summary := range summaries {
		docs = append(docs, toDocumentOutput(&summary))
	}
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("reading stats: %w", err)
	}
	return nil, StatsOutput{
		TotalDocuments: stats.TotalDocuments,
		TotalChunks:    stats.TotalChunks,
		TotalSizeBytes: stats.TotalSizeBytes,
	}, nil
}

func toResultOutputs(results []domain.SearchResult) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = SearchResultOutput{
			Rank:       results[i].Rank,
			Score:      results[i].Score,
			DocumentID: results[i].Chunk.DocumentID,
			ChunkID:    results[i].Chunk.ID,
			Position:   results[i].Chunk.Position,
			SourcePath: results[i].SourcePath,
			Title:      results[i].DocumentTitle,
			Content:    results[i].Chunk.Content,
			Highlights: slices.Clone(results[i].Highlights),
		}
	}
	return out
}

func toDocumentOutput(s *domain.DocumentSummary) DocumentOutput {
	return DocumentOutput{
		ID:         s.ID,
		SourcePath: s.SourcePath,
		Title:      s.Title,
		Kind:       s.Kind.String(),
		SizeBytes:  s.SizeBytes,
		WordCount:  s.WordCount,
		ChunkCount: s.ChunkCount,
	}
}
