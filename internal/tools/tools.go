// Package tools provides the built-in demonstration tools.
package tools

import (
	"context"
	"fmt"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/registry"
)

// LocationArgs is the argument set shared by the built-in tools.
type LocationArgs struct {
	Location string `json:"location" jsonschema:"required,description=The city and state e.g. San Francisco CA"`
}

const defaultNickname = "Bubba"

var nicknames = map[string]string{
	"Chicago":     "The Windy City",
	"Oxford":      "The City of Dreaming Spires",
	"Kansas City": "The City of Fountains",
	"London":      "The Old Smoke",
	"Paris":       "The City of Light",
	"Stockholm":   "The Venice of the North",
}

// Weather reports a fixed temperature for any location.
func Weather(ctx context.Context, args LocationArgs) (string, error) {
	return fmt.Sprintf("The weather in %s is 64 degrees.", args.Location), nil
}

// Nickname looks up the nickname of a city.
func Nickname(ctx context.Context, args LocationArgs) (string, error) {
	nickname, ok := nicknames[args.Location]
	if !ok {
		nickname = defaultNickname
	}
	return fmt.Sprintf("The nickname for %s is %s.", args.Location, nickname), nil
}

// Definitions returns the built-in tools.
func Definitions() []domain.Tool {
	params := registry.SchemaFor[LocationArgs]()
	return []domain.Tool{
		{Name: "getCurrentWeather", Description: "Get the weather in location", Parameters: params},
		{Name: "getNickname", Description: "Get the nickname of a city", Parameters: params},
	}
}

// Register adds the built-in tools to r.
func Register(r *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"getCurrentWeather": registry.Func(Weather),
		"getNickname":       registry.Func(Nickname),
	}
	for _, tool := range Definitions() {
		if err := r.Register(tool, handlers[tool.Name]); err != nil {
			return err
		}
	}
	return nil
}
