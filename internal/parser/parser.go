// Package parser extracts text and tables from heterogeneous document
// formats. Each format owns an ordered list of extraction methods; a method
// failure falls through to the next, and only exhausting every method
// yields empty output. Empty output is not an error: the pipeline records
// it as "no content extracted".
package parser

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/veridex-labs/veridex/internal/domain"
)

// Segment is a contiguous text span extracted from a document. Page is nil
// for formats without page structure.
type Segment struct {
	Text string
	Page *int
}

// Table is a block of structured rows. Rows are rendered to text by the
// caller; the structure is preserved for row-level chunking.
type Table struct {
	Page *int
	Rows [][]string
}

// Result is the output of parsing one file.
type Result struct {
	Segments []Segment
	Tables   []Table
}

// Empty reports whether parsing produced no content at all.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Segments) == 0 && len(r.Tables) == 0)
}

// Recognizer is the OCR capability the registry degrades to for scanned
// input. Satisfied by ocr.Engine.
type Recognizer interface {
	Available() bool
	Recognize(image []byte) string
}

// Method is one extraction strategy for a format.
type Method struct {
	Name  string
	Parse func(data []byte) (*Result, error)
}

// Registry maps file extensions to formats and formats to their prioritized
// extraction methods.
type Registry struct {
	ocr        Recognizer
	extensions map[string]domain.DocumentFormat
	methods    map[domain.DocumentFormat][]Method
}

// NewRegistry builds the standard registry. The recognizer may be nil, in
// which case OCR-dependent methods report failure and fall through.
func NewRegistry(recognizer Recognizer) *Registry {
	r := &Registry{
		ocr: recognizer,
		extensions: map[string]domain.DocumentFormat{
			".txt":      domain.FormatText,
			".text":     domain.FormatText,
			".log":      domain.FormatText,
			".md":       domain.FormatMarkdown,
			".markdown": domain.FormatMarkdown,
			".csv":      domain.FormatCSV,
			".tsv":      domain.FormatCSV,
			".xlsx":     domain.FormatSpreadsheet,
			".xlsm":     domain.FormatSpreadsheet,
			".docx":     domain.FormatDocx,
			".pdf":      domain.FormatPDF,
			".png":      domain.FormatImage,
			".jpg":      domain.FormatImage,
			".jpeg":     domain.FormatImage,
			".tif":      domain.FormatImage,
			".tiff":     domain.FormatImage,
			".bmp":      domain.FormatImage,
		},
		methods: map[domain.DocumentFormat][]Method{},
	}

	r.methods[domain.FormatText] = []Method{{Name: "plaintext", Parse: parseText}}
	r.methods[domain.FormatMarkdown] = []Method{{Name: "plaintext", Parse: parseText}}
	r.methods[domain.FormatCSV] = []Method{
		{Name: "csv", Parse: parseCSV},
		{Name: "plaintext", Parse: parseText},
	}
	r.methods[domain.FormatSpreadsheet] = []Method{{Name: "excelize", Parse: parseXLSX}}
	r.methods[domain.FormatDocx] = []Method{{Name: "docx-xml", Parse: parseDocx}}
	r.methods[domain.FormatPDF] = []Method{
		{Name: "pdf-text-layer", Parse: parsePDF},
		{Name: "ocr", Parse: r.parsePDFOCR},
	}
	r.methods[domain.FormatImage] = []Method{{Name: "ocr", Parse: r.parseWithOCR}}

	return r
}

// DetectFormat maps a filename to its document format. The second return is
// false when no parser claims the extension.
func (r *Registry) DetectFormat(filename string) (domain.DocumentFormat, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := r.extensions[ext]
	return format, ok
}

// Parse runs the format's methods in priority order. A method that errors
// or produces nothing falls through to the next; exhausting all methods
// yields an empty Result and no error. An unclaimed extension returns
// domain.ErrUnsupportedFormat.
func (r *Registry) Parse(data []byte, filename string) (*Result, domain.DocumentFormat, error) {
	format, ok := r.DetectFormat(filename)
	if !ok {
		return nil, "", domain.ErrUnsupportedFormat
	}

	for _, method := range r.methods[format] {
		result, err := safeParse(method, data)
		if err != nil {
			log.Printf("parser: %s method %q failed, trying next: %v", format, method.Name, err)
			continue
		}
		if result.Empty() {
			continue
		}
		return result, format, nil
	}

	return &Result{}, format, nil
}

// safeParse shields the chain from panics in format libraries; a panic is
// reported as a method failure.
func safeParse(method Method, data []byte) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
				"parse method "+method.Name+" panicked", nil)
		}
	}()
	return method.Parse(data)
}

// parseWithOCR degrades scanned input to the OCR engine. It never errors:
// an unavailable engine or unreadable image yields an empty result, which
// the chain treats as exhaustion.
func (r *Registry) parseWithOCR(data []byte) (*Result, error) {
	if r.ocr == nil || !r.ocr.Available() {
		return &Result{}, nil
	}
	text := r.ocr.Recognize(data)
	if strings.TrimSpace(text) == "" {
		return &Result{}, nil
	}
	return segmentsFromText(text), nil
}

// parsePDFOCR is the fallback for PDFs without a text layer. The OCR
// engine reads raster images, not PDF containers, so a scanned PDF
// normally degrades to empty content here; that gets its own log line so
// such uploads are diagnosable without page rasterization in place.
func (r *Registry) parsePDFOCR(data []byte) (*Result, error) {
	result, err := r.parseWithOCR(data)
	if err == nil && result.Empty() {
		log.Printf("parser: pdf has no extractable text layer and ocr recovered nothing; scanned pdfs need per-page rasterization to yield content")
	}
	return result, err
}
