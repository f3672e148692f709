package assistant

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forsa/assistant/config"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Redactor enforces the three trust-boundary gates: structured redaction of
// payload fields, sanitization of user input, and screening of generated
// output. Its lists come from configuration, not code.
type Redactor struct {
	identifierKeys map[string]struct{}
	blockedPhrases []string
	leakMarkers    []string
	maxMessageLen  int
}

func NewRedactor(guard config.Guard) *Redactor {
	keys := make(map[string]struct{}, len(guard.IdentifierKeys))
	for _, key := range guard.IdentifierKeys {
		keys[strings.ToLower(key)] = struct{}{}
	}

	lower := func(values []string) []string {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = strings.ToLower(v)
		}
		return out
	}

	maxLen := guard.MaxMessageLen
	if maxLen <= 0 {
		maxLen = 2000
	}

	return &Redactor{
		identifierKeys: keys,
		blockedPhrases: lower(guard.BlockedPhrases),
		leakMarkers:    lower(guard.LeakMarkers),
		maxMessageLen:  maxLen,
	}
}

// Redact walks a structured value, dropping internal-identifier keys and
// masking email-shaped strings. All other scalars pass through unchanged.
func (r *Redactor) Redact(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if _, drop := r.identifierKeys[strings.ToLower(key)]; drop {
				continue
			}
			out[key] = r.Redact(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.Redact(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = r.MaskText(item)
		}
		return out
	case string:
		return r.MaskText(v)
	default:
		return v
	}
}

// MaskText masks every email address in free text: the first two characters
// of the local part survive, the remainder becomes asterisks, and the domain
// is kept.
func (r *Redactor) MaskText(text string) string {
	return emailPattern.ReplaceAllStringFunc(text, maskEmail)
}

func maskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}
	local, domain := addr[:at], addr[at:]
	if len(local) <= 2 {
		return addr
	}
	return local[:2] + strings.Repeat("*", len(local)-2) + domain
}

// SanitizeInput screens a user message for instruction-override phrases. A
// match trips the gate (tripped=true, message unusable); otherwise the
// message is returned, truncated with a visible marker when it exceeds the
// configured maximum length.
func (r *Redactor) SanitizeInput(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, phrase := range r.blockedPhrases {
		if strings.Contains(lowered, phrase) {
			return "", true
		}
	}

	if len(message) > r.maxMessageLen {
		return cutAtRune(message, r.maxMessageLen) + " [truncated]", false
	}
	return message, false
}

// cutAtRune cuts s at limit bytes, backing up so the cut never splits a
// multi-byte rune.
func cutAtRune(s string, limit int) string {
	if limit >= len(s) {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// ScreenOutput reports whether generated text contains a leaked-identifier
// marker and must be discarded.
func (r *Redactor) ScreenOutput(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range r.leakMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
