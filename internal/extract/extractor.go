// Package extract turns raw email input (plain text, HTML, or a path to a
// .txt or .pdf file) into plain Unicode text
package extract

import (
	"html"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	textSuffix = ".txt"
	pdfSuffix  = ".pdf"
)

var (
	scriptOrStyle = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>|<style\b[^>]*>.*?</style\s*>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
)

// Extractor converts raw content into plain text. It never returns an error:
// unusable input degrades to "" and the cause is logged at debug level
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract resolves raw to plain text. A nil or blank value yields "". A value
// ending in .txt or .pdf, after trimming, is read as a file path; any other
// value is treated as the content itself
func (e *Extractor) Extract(raw *string) string {
	if raw == nil {
		return ""
	}
	return e.ExtractString(*raw)
}

// ExtractString is Extract for a plain string
func (e *Extractor) ExtractString(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	switch {
	case strings.HasSuffix(trimmed, textSuffix):
		content, ok := e.readText(trimmed)
		if !ok {
			return ""
		}
		return CleanHTML(content)
	case strings.HasSuffix(trimmed, pdfSuffix):
		content := e.readPDF(trimmed)
		if strings.TrimSpace(content) == "" {
			return ""
		}
		return CleanHTML(content)
	default:
		return CleanHTML(raw)
	}
}

// ExtractInline treats raw strictly as content, never as a file path. Markup
// is removed as in Extract
func (e *Extractor) ExtractInline(raw *string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return ""
	}
	return CleanHTML(*raw)
}

// ExtractFile reads the file at path and returns its plain text. The format is
// chosen from the extension; files that are neither .txt nor .pdf yield ""
func (e *Extractor) ExtractFile(path string) string {
	path = strings.TrimSpace(path)
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, textSuffix):
		content, ok := e.readText(path)
		if !ok {
			return ""
		}
		return CleanHTML(content)
	case strings.HasSuffix(lower, pdfSuffix):
		content := e.readPDF(path)
		if strings.TrimSpace(content) == "" {
			return ""
		}
		return CleanHTML(content)
	default:
		e.logger.Debug("Unsupported file type", zap.String("path", path))
		return ""
	}
}

func (e *Extractor) readText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Debug("Failed to read text file", zap.String("path", path), zap.Error(err))
		return "", false
	}
	if !utf8.Valid(data) {
		e.logger.Debug("Text file is not valid UTF-8", zap.String("path", path))
		return "", false
	}
	return string(data), true
}

// CleanHTML drops script and style elements with their bodies, strips every
// remaining tag, decodes entities and trims the ends. Tags are removed without
// inserting separators, so "<h1>A</h1><p>B</p>" becomes "AB"
func CleanHTML(content string) string {
	content = scriptOrStyle.ReplaceAllString(content, "")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return strings.TrimSpace(content)
}
