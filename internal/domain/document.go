package domain

import (
	"fmt"
	"time"
)

// DocumentFormat identifies the detected format of an ingested file.
type DocumentFormat string

const (
	FormatText        DocumentFormat = "text"
	FormatMarkdown    DocumentFormat = "markdown"
	FormatCSV         DocumentFormat = "csv"
	FormatSpreadsheet DocumentFormat = "spreadsheet"
	FormatDocx        DocumentFormat = "docx"
	FormatPDF         DocumentFormat = "pdf"
	FormatImage       DocumentFormat = "image"
)

// Document represents one ingested file. Immutable after creation except
// the soft-delete flag.
type Document struct {
	ID         string
	OwnerID    string
	Filename   string
	Format     DocumentFormat
	SizeBytes  int64
	Identifier string // detected reference number, empty when none found
	Region     string // detected jurisdiction code, empty when none found
	NumChunks  int
	Deleted    bool
	CreatedAt  time.Time
}

// ValidateDocument validates a Document instance.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.OwnerID == "" {
		return fmt.Errorf("document OwnerID is required")
	}
	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}
	if d.Format == "" {
		return fmt.Errorf("document Format is required")
	}
	if d.SizeBytes < 0 {
		return fmt.Errorf("document SizeBytes cannot be negative")
	}
	return nil
}
