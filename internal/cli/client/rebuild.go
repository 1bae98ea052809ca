package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// RebuildCmd creates the rebuild command.
func RebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Compact the server's vector index",
		Long:  "Asks the server to rebuild its vector index, reclaiming slots held by deleted chunks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd)
		},
	}
}

func runRebuild(cmd *cobra.Command) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Post("/index/rebuild", nil)
	if err != nil {
		return err
	}

	var result struct {
		Removed   int `json:"removed"`
		Remaining int `json:"remaining"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to decode rebuild response: %w", err)
	}

	fmt.Printf("reclaimed %d slots, %d chunks remain\n", result.Removed, result.Remaining)
	return nil
}
