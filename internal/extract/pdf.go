package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// readPDF returns the plain text of the PDF at path, or "" when the file is
// missing, corrupt or has no text layer
func (e *Extractor) readPDF(path string) string {
	if _, err := os.Stat(path); err != nil {
		e.logger.Debug("PDF file not found", zap.String("path", path), zap.Error(err))
		return ""
	}

	text, err := pdfText(path)
	if err != nil {
		e.logger.Debug("Failed to extract PDF text", zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

// pdfText wraps the PDF reader, which panics on some malformed inputs
func pdfText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}
