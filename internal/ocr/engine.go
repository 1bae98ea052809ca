// Package ocr recognizes text in raster images via tesseract. Recognition
// never propagates a failure: any error or panic degrades to empty text so
// callers proceed with whatever other segments exist.
package ocr

import (
	"log"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Engine wraps a tesseract client factory. The zero value is unusable; use
// NewEngine.
type Engine struct {
	enabled bool

	probeOnce sync.Once
	probeOK   bool
}

// NewEngine creates an Engine. When enabled is false every call returns
// empty text without touching tesseract.
func NewEngine(enabled bool) *Engine {
	return &Engine{enabled: enabled}
}

// Available reports whether the tesseract runtime can be used. The probe
// runs once; a missing or broken installation disables recognition for the
// process lifetime.
func (e *Engine) Available() bool {
	if e == nil || !e.enabled {
		return false
	}
	e.probeOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ocr: tesseract probe failed, recognition disabled: %v", r)
				e.probeOK = false
			}
		}()
		client := gosseract.NewClient()
		defer client.Close()
		e.probeOK = true
	})
	return e.probeOK
}

// Recognize extracts text from an image. Errors are caught internally and
// yield empty text.
func (e *Engine) Recognize(image []byte) string {
	if !e.Available() || len(image) == 0 {
		return ""
	}

	text := ""
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ocr: recognition panicked, returning empty text: %v", r)
			}
		}()

		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetImageFromBytes(image); err != nil {
			log.Printf("ocr: failed to load image: %v", err)
			return
		}
		out, err := client.Text()
		if err != nil {
			log.Printf("ocr: recognition failed: %v", err)
			return
		}
		text = out
	}()

	return strings.TrimSpace(text)
}
