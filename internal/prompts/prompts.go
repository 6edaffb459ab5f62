// Package prompts holds the prompt templates sent to the language model.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

//go:embed templates/*.prompt
var templates embed.FS

const (
	classifierFile = "templates/email_classifier.prompt"
	responderFile  = "templates/email_responder.prompt"
)

// Classifier returns the classification template. A non-empty overridePath
// replaces the embedded template.
func Classifier(overridePath string) (string, error) {
	return load(classifierFile, overridePath, core.EmailTextPlaceholder)
}

// Responder returns the reply template. A non-empty overridePath replaces
// the embedded template.
func Responder(overridePath string) (string, error) {
	return load(responderFile, overridePath, core.EmailTextPlaceholder, core.EmailCategoryPlaceholder)
}

func load(name, overridePath string, placeholders ...string) (string, error) {
	var (
		data []byte
		err  error
	)
	if overridePath != "" {
		data, err = os.ReadFile(overridePath)
	} else {
		data, err = templates.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template: %w", err)
	}

	text := string(data)
	for _, p := range placeholders {
		if !strings.Contains(text, p) {
			return "", fmt.Errorf("prompt template %s is missing placeholder %s", name, p)
		}
	}
	return text, nil
}
