// Package pdftext implements port.TextExtractor with a pure-Go PDF reader.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("pdftext")

// Extractor pulls the text layer out of PDF documents.
type Extractor struct{}

// New creates a PDF text extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText returns the document's text layer, page rows joined with
// newlines so downstream line-oriented parsing works.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	_, span := tracer.Start(ctx, "PDF.ExtractText")
	defer span.End()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdftext: open document: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdftext: read page %d: %w", pageNum, err)
		}

		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
