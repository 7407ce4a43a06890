package conversation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/relay/pkg/domain"
)

// MaxMessageLength is the longest message content, in characters, the remote accepts.
const MaxMessageLength = 256000

const esc = 0x1b

// Clean prepares user text for the thread. Terminal escape sequences and control
// characters other than newline and tab are dropped, then surrounding space is trimmed.
// maxLen counts characters; zero or less means MaxMessageLength.
func Clean(text string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = MaxMessageLength
	}
	if !utf8.ValidString(text) {
		return "", domain.ErrMessageEncoding
	}

	text = strings.TrimSpace(stripControls(text))
	if text == "" {
		return "", domain.ErrEmptyMessage
	}
	if n := utf8.RuneCountInString(text); n > maxLen {
		return "", fmt.Errorf("%w: %d characters, limit %d", domain.ErrMessageTooLong, n, maxLen)
	}
	return text, nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t'
}

func stripControls(s string) string {
	if !strings.ContainsFunc(s, unsafeControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == esc {
			i += escapeLen(s[i:])
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// escapeLen returns the byte length of the escape sequence s starts with.
func escapeLen(s string) int {
	if len(s) < 2 {
		return len(s)
	}
	switch s[1] {
	case '[': // CSI ends with a byte in @..~
		for i := 2; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return len(s)
	case ']': // OSC ends with BEL or ESC \
		for i := 2; i < len(s); i++ {
			if s[i] == '\a' {
				return i + 1
			}
			if s[i] == esc && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[1:])
	return 1 + size
}
