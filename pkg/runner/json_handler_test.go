package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Input(t *testing.T) {
	in := strings.NewReader("\"quoted\"\n{\"message\":\"from object\"}\nplain text\n")
	handler := NewJSONHandler(in, io.Discard)

	for _, want := range []string{"quoted", "from object", "plain text"} {
		got, err := handler.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), out)

	require.NoError(t, handler.SystemOutput(context.Background(), "- Run status: completed"))
	require.NoError(t, handler.Output(context.Background(), "Hello"))

	assert.Equal(t,
		`{"type":"system","text":"- Run status: completed"}`+"\n"+`{"type":"response","text":"Hello"}`+"\n",
		out.String())
}
