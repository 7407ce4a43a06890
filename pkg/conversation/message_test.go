package conversation_test

import (
	"strings"
	"testing"

	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "What's the weather in Chicago?", "What's the weather in Chicago?"},
		{"Trimmed", "  hello \n", "hello"},
		{"Keeps Newline And Tab", "line1\nline2\tcol", "line1\nline2\tcol"},
		{"Drops CRLF Carriage Return", "line1\r\nline2", "line1\nline2"},
		{"Colored Text", "\x1b[31mRed\x1b[0m alert", "Red alert"},
		{"Cursor Movement", "a\x1b[2;5Hb", "ab"},
		{"Window Title", "\x1b]0;pwned\x07hi", "hi"},
		{"Window Title With ST", "\x1b]0;pwned\x1b\\hi", "hi"},
		{"Null And Bell", "Null\x00Byte\x07", "NullByte"},
		{"Unicode", "Södermalm, Stockholm ☕", "Södermalm, Stockholm ☕"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conversation.Clean(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   error
	}{
		{"Empty", "", 0, domain.ErrEmptyMessage},
		{"Only Controls", " \x1b[0m\x07 ", 0, domain.ErrEmptyMessage},
		{"Invalid UTF-8", "\xbd\xb2\x3d\xbc", 0, domain.ErrMessageEncoding},
		{"Over Limit", "12345678901", 10, domain.ErrMessageTooLong},
		{"Over Default Limit", strings.Repeat("a", conversation.MaxMessageLength+1), 0, domain.ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conversation.Clean(tt.input, tt.maxLen)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClean_LimitCountsCharacters(t *testing.T) {
	text := strings.Repeat("é", 10)

	got, err := conversation.Clean(text, 10)

	require.NoError(t, err)
	assert.Equal(t, text, got)
}
