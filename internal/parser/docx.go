package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parseDocx walks word/document.xml inside the OOXML package. Paragraphs
// become segments; embedded tables are flattened row-by-row.
func parseDocx(data []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx package: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx package has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	return walkDocumentXML(rc)
}

func walkDocumentXML(r io.Reader) (*Result, error) {
	dec := xml.NewDecoder(r)
	result := &Result{}

	var (
		para       strings.Builder
		cell       strings.Builder
		row        []string
		rows       [][]string
		tableDepth int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					row = nil
				}
			case "t":
				inText = true
			}

		case xml.CharData:
			if !inText {
				continue
			}
			if tableDepth > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth > 0 {
					// paragraph break inside a cell
					cell.WriteString(" ")
					continue
				}
				if text := strings.TrimSpace(para.String()); text != "" {
					result.Segments = append(result.Segments, Segment{Text: text})
				}
				para.Reset()
			case "tc":
				if tableDepth > 0 {
					row = append(row, strings.TrimSpace(cell.String()))
					cell.Reset()
				}
			case "tr":
				if tableDepth > 0 && rowHasContent(row) {
					rows = append(rows, row)
				}
			case "tbl":
				tableDepth--
				if tableDepth <= 0 {
					tableDepth = 0
					if len(rows) > 0 {
						result.Tables = append(result.Tables, Table{Rows: rows})
						rows = nil
					}
				}
			}
		}
	}

	return result, nil
}
