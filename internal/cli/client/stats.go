package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and index counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Get("/stats")
	if err != nil {
		return err
	}

	if outputJSON {
		fmt.Printf("%s\n", resp.Data)
		return nil
	}

	var stats struct {
		Documents     int  `json:"documents"`
		IndexSlots    int  `json:"index_slots"`
		LiveChunks    int  `json:"live_chunks"`
		Dimension     int  `json:"dimension"`
		UnsavedChange bool `json:"unsaved_changes"`
	}
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}

	fmt.Printf("documents:       %d\n", stats.Documents)
	fmt.Printf("index slots:     %d\n", stats.IndexSlots)
	fmt.Printf("live chunks:     %d\n", stats.LiveChunks)
	fmt.Printf("dimension:       %d\n", stats.Dimension)
	fmt.Printf("unsaved changes: %v\n", stats.UnsavedChange)
	return nil
}
