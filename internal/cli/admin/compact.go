package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/veridex-labs/veridex/internal/config"
)

// CompactCmd returns the compact command. It rebuilds the index offline:
// load the latest snapshot, drop logically deleted slots, save.
func CompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Compact the index snapshot",
		Long:  "Load the latest index snapshot, reclaim logically deleted slots and write a fresh snapshot. Run this while the server is stopped.",
		RunE:  runCompact,
	}
}

func runCompact(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	ix, err := buildIndex(ctx, cfg, provider.Dimension())
	if err != nil {
		return err
	}
	if ix.Len() == 0 {
		log.Println("index is empty, nothing to compact")
		return nil
	}

	removed := ix.Rebuild()
	if err := ix.Save(ctx); err != nil {
		return fmt.Errorf("failed to save compacted snapshot: %w", err)
	}

	log.Printf("compacted index: %d slots reclaimed, %d chunks remain", removed, ix.Len())
	return nil
}
