package allowlist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether an email sender belongs to a trusted domain
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Normalize domains (lowercase, no leading @)
	normalized := make(map[string]struct{}, len(domains))
	names := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
		if d == "" {
			continue
		}
		if _, dup := normalized[d]; !dup {
			normalized[d] = struct{}{}
			names = append(names, d)
		}
	}

	if len(names) > 0 {
		logger.Info("Initialized sender allowlist", zap.Strings("domains", names))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted checks if the sender's domain is in the allowlist. from may be a
// bare address or a display-name form such as "Ana <ana@example.com>".
func (c *Checker) IsTrusted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	if domain == "" {
		return false
	}

	if _, ok := c.domains[domain]; ok {
		c.logger.Debug("Sender domain is trusted",
			zap.String("domain", domain),
			zap.String("email", from))
		return true
	}
	return false
}

// Domains returns the number of trusted domains
func (c *Checker) Domains() int {
	return len(c.domains)
}

func senderDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 || parts[0] == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(parts[1], "."))
}
