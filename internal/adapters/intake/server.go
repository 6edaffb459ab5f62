// Package intake receives mail over SMTP, triages it and passes it on with
// triage headers added.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

const triageTimeout = 60 * time.Second

// Server is an SMTP content filter in front of the next mail hop
type Server struct {
	service ports.Triager
	logger  *zap.Logger
	cfg     config.IntakeConfig
	server  *smtp.Server
	addr    net.Addr
	wg      sync.WaitGroup

	// deliver hands the annotated message on; it relays by default
	deliver func(from string, to []string, data []byte) error
}

// NewServer creates a new SMTP intake server
func NewServer(service ports.Triager, cfg config.IntakeConfig, logger *zap.Logger) *Server {
	if cfg.CategoryHeader == "" {
		cfg.CategoryHeader = "X-Triage-Category"
	}
	if cfg.ConfidenceHeader == "" {
		cfg.ConfidenceHeader = "X-Triage-Confidence"
	}
	if cfg.ReasonHeader == "" {
		cfg.ReasonHeader = "X-Triage-Reason"
	}
	if cfg.ErrorHeader == "" {
		cfg.ErrorHeader = "X-Triage-Error"
	}

	s := &Server{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
	s.deliver = s.relay
	return s
}

// Name identifies the listener in logs
func (s *Server) Name() string {
	return "smtp"
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Start starts the SMTP server in the background
func (s *Server) Start() error {
	s.server = smtp.NewServer(&smtpBackend{intake: s})

	s.server.Addr = s.cfg.ListenAddress
	s.server.Domain = s.cfg.Domain
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = s.cfg.MaxMessageBytes
	s.server.MaxRecipients = 50
	s.server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.addr = ln.Addr()

	s.logger.Info("SMTP intake starting",
		zap.String("address", s.addr.String()),
		zap.Bool("relay_enabled", s.cfg.RelayEnabled))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			s.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop stops the SMTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Stopping SMTP intake")
	err := s.server.Close()
	s.wg.Wait()
	if err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		return fmt.Errorf("failed to stop SMTP server: %w", err)
	}
	return nil
}

// process triages one raw message and returns it with triage headers added
func (s *Server) process(ctx context.Context, sender string, raw []byte) ([]byte, error) {
	email, err := ParseMessage(raw)
	if err != nil {
		return nil, err
	}
	if sender == "" {
		sender = email.From
	}

	ctx, cancel := context.WithTimeout(ctx, triageTimeout)
	defer cancel()

	headers := make([][2]string, 0, 4)
	classification, err := s.service.Classify(ctx, core.TriageRequest{
		Content: &email.Body,
		Sender:  sender,
		Inline:  true,
	})
	if err != nil {
		s.logger.Error("Failed to triage email",
			zap.Error(err),
			zap.String("sender", sender),
			zap.String("subject", email.Subject))
		headers = append(headers, [2]string{s.cfg.ErrorHeader, headerValue(err.Error())})
	} else {
		headers = append(headers,
			[2]string{s.cfg.CategoryHeader, string(classification.Category)},
			[2]string{s.cfg.ConfidenceHeader, fmt.Sprintf("%.4f", classification.Confidence)},
			[2]string{s.cfg.ReasonHeader, headerValue(classification.Reason)},
		)
		s.logger.Info("Processed email",
			zap.String("from", sender),
			zap.String("subject", email.Subject),
			zap.String("category", string(classification.Category)),
			zap.Float64("confidence", classification.Confidence),
			zap.String("model", classification.ModelUsed),
			zap.Bool("cached", classification.Cached))
	}

	names := []string{s.cfg.CategoryHeader, s.cfg.ConfidenceHeader, s.cfg.ReasonHeader, s.cfg.ErrorHeader}
	return annotate(raw, headers, names), nil
}

// headerValue folds a value onto one line and Q-encodes non-ASCII text
func headerValue(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	return mime.QEncoding.Encode("utf-8", v)
}

// annotate prepends headers to raw after removing any existing header whose
// name is in names, so senders cannot forge triage results.
func annotate(raw []byte, headers [][2]string, names []string) []byte {
	head, body, sep := splitMessage(raw)

	var out bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}

	skipping := false
	for _, line := range splitLines(head) {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			// Continuation of the previous header
			if !skipping {
				out.Write(line)
			}
			continue
		}
		skipping = false
		if i := bytes.IndexByte(line, ':'); i > 0 {
			name := strings.TrimSpace(string(line[:i]))
			for _, n := range names {
				if strings.EqualFold(name, n) {
					skipping = true
					break
				}
			}
		}
		if !skipping {
			out.Write(line)
		}
	}

	out.Write(sep)
	out.Write(body)
	return out.Bytes()
}

// splitMessage splits raw into the header block, the blank-line separator and the body
func splitMessage(raw []byte) (head, body, sep []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+4:], []byte("\r\n")
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], raw[i+2:], []byte("\n")
	}
	return raw, nil, nil
}

// splitLines splits b into lines that keep their terminators
func splitLines(b []byte) [][]byte {
	var lines [][]byte
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}
		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}
	return lines
}

// relay sends the processed email on to the configured next hop using go-smtp
func (s *Server) relay(sender string, recipients []string, data []byte) error {
	if !s.cfg.RelayEnabled {
		s.logger.Warn("Relay disabled, annotated message is not forwarded", zap.String("sender", sender))
		return nil
	}

	// Get hostname for EHLO
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	// Connect to the server with a timeout
	conn, err := net.DialTimeout("tcp", s.cfg.RelayAddress, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	// Set a deadline for the connection
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			s.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message has already been accepted
		s.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *Server
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *Server
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data triages the message and hands it on
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	annotated, err := s.intake.process(context.Background(), s.sender, raw)
	if err != nil {
		s.intake.logger.Error("Failed to process message", zap.String("sender", s.sender), zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Message could not be parsed",
		}
	}

	if err := s.intake.deliver(s.sender, s.recipients, annotated); err != nil {
		s.intake.logger.Error("Failed to relay message",
			zap.Error(err),
			zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Next hop unavailable, try again later",
		}
	}
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
