package registry

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Func adapts a typed function into a Handler.
// Arguments are decoded into T by their `json` field tags; a decode failure is reported
// as a MalformedArgumentsError.
func Func[T any](fn func(ctx context.Context, args T) (string, error)) Handler {
	return func(ctx context.Context, raw map[string]any) (string, error) {
		var args T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &args,
		})
		if err != nil {
			return "", err
		}
		if err := decoder.Decode(raw); err != nil {
			return "", &domain.MalformedArgumentsError{Err: err}
		}
		return fn(ctx, args)
	}
}
