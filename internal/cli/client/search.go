package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query  string            `json:"query"`
	TopK   int               `json:"top_k,omitempty"`
	Filter map[string]string `json:"filter,omitempty"`
}

// SearchResult represents one ranked chunk.
type SearchResult struct {
	Score    float32 `json:"score"`
	Content  string  `json:"content"`
	Metadata struct {
		ChunkID    string `json:"chunk_id"`
		DocID      string `json:"doc_id"`
		Filename   string `json:"filename"`
		Page       *int   `json:"page,omitempty"`
		Identifier string `json:"identifier,omitempty"`
		Region     string `json:"region,omitempty"`
	} `json:"metadata"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		topK   int
		region string
		docID  string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Long:  "Searches indexed document chunks by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], topK, region, docID, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "n", 0, "Maximum number of results")
	cmd.Flags().StringVar(&region, "region", "", "Filter by jurisdiction code")
	cmd.Flags().StringVar(&docID, "doc", "", "Filter by document id")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, topK int, region, docID string, outputJSON bool) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{Query: query, TopK: topK}
	if region != "" || docID != "" {
		req.Filter = map[string]string{}
		if region != "" {
			req.Filter["region"] = strings.ToUpper(region)
		}
		if docID != "" {
			req.Filter["doc_id"] = docID
		}
	}

	resp, err := client.Post("/search", req)
	if err != nil {
		return err
	}

	if outputJSON {
		fmt.Printf("%s\n", resp.Data)
		return nil
	}

	var out SearchResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to decode search response: %w", err)
	}

	if len(out.Results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, r := range out.Results {
		location := r.Metadata.Filename
		if r.Metadata.Page != nil {
			location = fmt.Sprintf("%s p.%d", location, *r.Metadata.Page)
		}
		fmt.Printf("%2d. [%.3f] %s (%s)\n", i+1, r.Score, location, r.Metadata.DocID)
		if r.Metadata.Identifier != "" {
			fmt.Printf("    identifier: %s\n", r.Metadata.Identifier)
		}
		fmt.Printf("    %s\n", snippet(r.Content, 160))
	}
	return nil
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
