package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DocumentItem represents one document in list output.
type DocumentItem struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	Identifier string `json:"identifier,omitempty"`
	Region     string `json:"region,omitempty"`
	NumChunks  int    `json:"num_chunks"`
	CreatedAt  string `json:"created_at"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, outputJSON)
		},
	}
}

func runList(cmd *cobra.Command, outputJSON bool) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Get("/documents")
	if err != nil {
		return err
	}

	if outputJSON {
		fmt.Printf("%s\n", resp.Data)
		return nil
	}

	var docs []DocumentItem
	if err := json.Unmarshal(resp.Data, &docs); err != nil {
		return fmt.Errorf("failed to decode document list: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	for _, d := range docs {
		line := fmt.Sprintf("%s  %-10s chunks=%-3d %s", d.ID, d.Format, d.NumChunks, d.Filename)
		if d.Identifier != "" {
			line += "  identifier=" + d.Identifier
		}
		if d.Region != "" {
			line += "  region=" + d.Region
		}
		fmt.Println(line)
	}
	return nil
}
