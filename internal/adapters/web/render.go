package web

import (
	"embed"
	"encoding/json"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"mul100": func(f float64) float64 { return f * 100 },
}

// Toast is the notification shown by the UI after an HTMX request
type Toast struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// renderHTMX renders a template and attaches the toast as an HX-Trigger event
func renderHTMX(c *gin.Context, status int, name string, data gin.H, toast *Toast) {
	if toast != nil && toast.Type != "" && toast.Title != "" {
		payload, err := json.Marshal(map[string]*Toast{"toast": toast})
		if err == nil {
			c.Header("HX-Trigger", string(payload))
		}
	}
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, status int, message string, toast *Toast) {
	renderHTMX(c, status, "error_display.html", gin.H{"ErrorMessage": message}, toast)
}
