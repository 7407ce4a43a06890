package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/registry"
)

// DefaultGracePeriod is how long a cancelled process may take to exit after the
// interrupt before it is killed.
const DefaultGracePeriod = 5 * time.Second

// ArgPrefix prefixes the environment variable carrying each tool argument.
const ArgPrefix = "RELAY_ARG_"

// Runner executes allow-listed local commands as tool handlers.
// Arguments never reach the command line: they are passed as environment variables.
type Runner struct {
	baseDir string
	grace   time.Duration
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithGracePeriod sets the delay between interrupt and kill on cancellation.
func WithGracePeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.grace = d
	}
}

// WithLogger configures a logger for the runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		grace:  DefaultGracePeriod,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds every configured tool to reg.
func (r *Runner) Register(reg *registry.Registry, tools []ToolConfig) error {
	for _, cfg := range tools {
		if err := reg.Register(cfg.Tool(), r.Handler(cfg)); err != nil {
			return fmt.Errorf("register process tool %q: %w", cfg.Name, err)
		}
	}
	return nil
}

// Handler returns a registry handler running cfg. The trimmed stdout is the tool output.
func (r *Runner) Handler(cfg ToolConfig) registry.Handler {
	return func(ctx context.Context, args map[string]any) (string, error) {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		return r.Execute(ctx, cfg, args)
	}
}

// Execute runs the command once with args exposed as RELAY_ARG_<NAME> variables.
func (r *Runner) Execute(ctx context.Context, cfg ToolConfig, args map[string]any) (string, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = r.baseDir
	cmd.Cancel = func() error {
		if runtime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.grace

	env := cmd.Environ()
	for k, v := range cfg.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(env, ArgEnv(args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("process tool finished",
		"tool", cfg.Name,
		"command", cfg.Command,
		"duration", time.Since(start),
		"err", err,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("execution failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("execution failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ArgEnv renders arguments as sorted KEY=value pairs. Scalars are printed as is,
// nested values as JSON.
func ArgEnv(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		var val string
		switch v := args[k].(type) {
		case nil:
		case string:
			val = v
		case int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		default:
			if b, err := json.Marshal(v); err == nil {
				val = string(b)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, ArgPrefix+envName(k)+"="+val)
	}
	return env
}

func envName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
}
