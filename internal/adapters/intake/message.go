package intake

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"golang.org/x/text/encoding/htmlindex"
)

// maxMultipartDepth bounds recursion into nested multipart bodies
const maxMultipartDepth = 5

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// ParseMessage parses a raw RFC 5322 message and extracts its text body.
// A text/plain part is preferred; text/html is used when no plain part exists.
func ParseMessage(raw []byte) (*core.Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, err
	}

	email := &core.Email{
		Headers: make(map[string][]string, len(msg.Header)),
		Body:    body,
		Subject: decodeHeader(msg.Header.Get("Subject")),
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
	}
	if from, err := msg.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
	}
	if to, err := msg.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}
	return email, nil
}

// extractTextFromMessage extracts the text content from an email message
func extractTextFromMessage(msg *mail.Message) (string, error) {
	var parts textParts
	err := collectText(&parts, msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
	if err != nil {
		return "", err
	}
	return parts.String(), nil
}

type textParts struct {
	plain []string
	html  []string
}

func (p *textParts) String() string {
	if len(p.plain) > 0 {
		return strings.Join(p.plain, "\n")
	}
	return strings.Join(p.html, "\n")
}

func collectText(parts *textParts, contentType, encoding string, body io.Reader, depth int) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Missing or malformed Content-Type defaults to text/plain
		mediaType, params = "text/plain", map[string]string{}
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" || depth >= maxMultipartDepth {
			return nil
		}

		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				// Keep what was collected from a truncated message
				if len(parts.plain)+len(parts.html) > 0 {
					return nil
				}
				return fmt.Errorf("failed to read multipart body: %w", err)
			}
			if isAttachment(part) {
				continue
			}
			if err := collectText(parts, part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, depth+1); err != nil {
				return err
			}
		}

	case mediaType == "text/plain", mediaType == "text/html":
		text, err := decodeBody(body, encoding, params["charset"])
		if err != nil {
			return err
		}
		if mediaType == "text/plain" {
			parts.plain = append(parts.plain, text)
		} else {
			parts.html = append(parts.html, text)
		}
	}
	// Skip other parts (images, attachments, etc.)
	return nil
}

func isAttachment(part *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

// decodeBody undoes the transfer encoding and converts the charset to UTF-8.
// multipart.Part decodes quoted-printable itself and drops the header.
func decodeBody(body io.Reader, encoding, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		if r, err := charsetReader(charset, body); err == nil {
			body = r
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(data), nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure
func decodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
