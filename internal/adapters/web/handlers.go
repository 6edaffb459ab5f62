package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/textproc"
	"go.uber.org/zap"
)

var errUnsupportedUpload = errors.New("unsupported file type")

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"ActiveMethod": "text"})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) inputMethod(c *gin.Context) {
	method := c.Param("method")
	if method != "text" && method != "file" {
		c.String(http.StatusBadRequest, "Método inválido")
		return
	}
	c.HTML(http.StatusOK, "input_wrapper.html", gin.H{"ActiveMethod": method})
}

func (s *Server) textInput(c *gin.Context) {
	c.HTML(http.StatusOK, "text_input.html", gin.H{"ActiveMethod": "text"})
}

// processEmail handles the HTMX form: exactly one of email_content or file
func (s *Server) processEmail(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			renderError(c, http.StatusRequestEntityTooLarge, "O conteúdo enviado excede o tamanho máximo permitido.", &Toast{
				Type: "error", Title: "Arquivo Muito Grande",
				Description: fmt.Sprintf("O limite é de %d bytes.", s.cfg.MaxUploadBytes),
			})
			return
		}
		renderError(c, http.StatusBadRequest, "Não foi possível ler o formulário enviado.", &Toast{
			Type: "error", Title: "Erro de Validação",
		})
		return
	}

	content, hasContent := c.Request.PostForm["email_content"]
	var upload *multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil && len(form.File["file"]) > 0 {
		upload = form.File["file"][0]
	}

	if hasContent == (upload != nil) {
		renderError(c, http.StatusBadRequest, "Forneça texto ou um arquivo, não ambos.", &Toast{
			Type: "error", Title: "Erro de Validação",
			Description: "É necessário enviar apenas uma fonte de conteúdo.",
		})
		return
	}

	req := core.TriageRequest{}
	if upload != nil {
		path, err := saveUpload(upload)
		if err != nil {
			if errors.Is(err, errUnsupportedUpload) {
				renderError(c, http.StatusBadRequest, "Formato de arquivo não suportado. Envie um arquivo .txt ou .pdf.", &Toast{
					Type: "error", Title: "Arquivo Inválido",
					Description: "Apenas arquivos .txt e .pdf são aceitos.",
				})
				return
			}
			s.logger.Error("Failed to store upload", zap.String("filename", upload.Filename), zap.Error(err))
			renderUnexpected(c, err)
			return
		}
		defer os.Remove(path)
		req.FilePath = path
	} else {
		text := content[0]
		req.Content = &text
		req.Inline = true
	}

	result, err := s.service.Triage(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyContent):
			renderError(c, http.StatusBadRequest, "O conteúdo do e-mail está vazio.", &Toast{
				Type: "error", Title: "Erro de Conteúdo",
				Description: "O e-mail parece estar vazio ou não pôde ser lido.",
			})
		case core.IsModelOutputError(err):
			s.logger.Warn("Model returned unusable output", zap.Error(err))
			renderError(c, http.StatusInternalServerError, fmt.Sprintf("Erro ao processar a resposta da IA: %v", err), &Toast{
				Type: "error", Title: "Erro na IA",
				Description: "A resposta do modelo de IA foi inválida.",
			})
		default:
			s.logger.Error("Triage failed", zap.Error(err))
			renderUnexpected(c, err)
		}
		return
	}

	renderHTMX(c, http.StatusOK, "result_display.html", gin.H{
		"Category":   result.Label,
		"Confidence": result.Confidence,
		"Reason":     result.Reason,
		"Response":   result.Reply,
		"Cached":     result.Cached,
	}, &Toast{
		Type: "success", Title: "E-mail Analisado",
		Description: fmt.Sprintf("Classificado como '%s'.", result.Label),
	})
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func renderUnexpected(c *gin.Context, err error) {
	renderError(c, http.StatusInternalServerError, fmt.Sprintf("Ocorreu um erro inesperado: %v", err), &Toast{
		Type: "error", Title: "Erro Inesperado",
		Description: "Não foi possível processar a solicitação.",
	})
}

// saveUpload writes the upload to a temp file whose suffix selects the
// extraction path. The caller removes the file.
func saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	suffix, err := uploadSuffix(fh.Filename, data)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "email-upload-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmp.Name(), nil
}

// uploadSuffix picks .txt or .pdf from the filename, falling back to content sniffing
func uploadSuffix(filename string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".pdf":
		return ext, nil
	}

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/pdf") {
			return ".pdf", nil
		}
		if strings.HasPrefix(m.String(), "text/") {
			return ".txt", nil
		}
	}
	return "", errUnsupportedUpload
}

type triageRequest struct {
	EmailContent *string `json:"email_content" binding:"required"`
	Sender       string  `json:"sender"`
}

// triageJSON is the programmatic counterpart of processEmail
func (s *Server) triageJSON(c *gin.Context) {
	var req triageRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: email_content is required"})
		return
	}

	result, err := s.service.Triage(c.Request.Context(), core.TriageRequest{
		Content: req.EmailContent,
		Sender:  req.Sender,
		Inline:  true,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrEmptyContent):
			status = http.StatusBadRequest
		case core.IsModelOutputError(err), errors.Is(err, core.ErrUpstream):
			status = http.StatusBadGateway
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": core.DescribeError(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

type normalizeRequest struct {
	Text     *string           `json:"text"`
	Options  *textproc.Options `json:"options"`
	Tokenize bool              `json:"tokenize"`
}

// normalize runs the text pipeline alone; option fields left out of the
// request keep their defaults
func (s *Server) normalize(c *gin.Context) {
	opts := textproc.DefaultOptions()
	req := normalizeRequest{Options: &opts}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Options == nil {
		req.Options = &opts
	}
	c.JSON(http.StatusOK, textproc.Preprocess(req.Text, *req.Options, req.Tokenize))
}
