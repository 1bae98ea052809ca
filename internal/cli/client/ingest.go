package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
)

// ingestOutcome pairs one file with its upload result.
type ingestOutcome struct {
	Path   string
	Result json.RawMessage
	Err    error
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest <file> [file...]",
		Short: "Upload documents for indexing",
		Long:  "Uploads one or more files to the server for parsing, chunking and indexing.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args, workers, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of concurrent uploads")

	return cmd
}

func runIngest(cmd *cobra.Command, paths []string, workers int, outputJSON bool) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string)
	outcomes := make([]ingestOutcome, 0, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				resp, err := client.UploadFile(path)
				outcome := ingestOutcome{Path: path, Err: err}
				if err == nil {
					outcome.Result = resp.Data
				}
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", outcome.Path, outcome.Err)
			continue
		}
		if outputJSON {
			fmt.Printf("%s\n", outcome.Result)
			continue
		}

		var result struct {
			DocID              string `json:"doc_id"`
			NumChunks          int    `json:"num_chunks"`
			DetectedIdentifier string `json:"detected_identifier"`
			DetectedRegion     string `json:"detected_region"`
			Empty              bool   `json:"empty"`
		}
		if err := json.Unmarshal(outcome.Result, &result); err != nil {
			fmt.Printf("OK    %s\n", outcome.Path)
			continue
		}

		status := "OK   "
		if result.Empty {
			status = "EMPTY"
		}
		line := fmt.Sprintf("%s %s  doc=%s chunks=%d", status, outcome.Path, result.DocID, result.NumChunks)
		if result.DetectedIdentifier != "" {
			line += " identifier=" + result.DetectedIdentifier
		}
		if result.DetectedRegion != "" {
			line += " region=" + result.DetectedRegion
		}
		fmt.Println(line)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return nil
}
