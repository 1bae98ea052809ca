package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doc-id>",
		Short: "Delete a document",
		Long:  "Soft-deletes a document; its chunks stop appearing in search results.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}
}

func runDelete(cmd *cobra.Command, docID string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := client.Delete("/documents/" + docID); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", docID)
	return nil
}
