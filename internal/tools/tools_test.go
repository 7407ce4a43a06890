package tools_test

import (
	"context"
	"testing"

	"github.com/aretw0/relay/internal/tools"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNickname(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Chicago", "The nickname for Chicago is The Windy City."},
		{"Kansas City", "The nickname for Kansas City is The City of Fountains."},
		{"Stockholm", "The nickname for Stockholm is The Venice of the North."},
		{"Springfield", "The nickname for Springfield is Bubba."},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, err := tools.Nickname(context.Background(), tools.LocationArgs{Location: tt.location})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, tools.Register(r))

	res, err := r.Dispatch(context.Background(), domain.ToolCall{
		ID:   "call_1",
		Name: "getCurrentWeather",
		Raw:  `{"location":"Chicago"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "The weather in Chicago is 64 degrees.", res.Output)

	// location is required by both tools
	_, err = r.Dispatch(context.Background(), domain.ToolCall{ID: "call_2", Name: "getNickname", Raw: `{}`})
	assert.ErrorIs(t, err, domain.ErrMalformedArguments)
}
