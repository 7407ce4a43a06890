/*
Package relay drives runs of a hosted assistant (OpenAI Assistants style) from the client side.

A run is asynchronous remote work over a conversation thread. Relay appends the user message,
starts the run, polls it until it settles and, whenever the run pauses on tool calls, executes
every requested tool locally and submits all results in a single batch. The newest message of
the thread is the reply.

# Concept

The remote service owns the conversation history. Relay only keeps identities (assistant,
thread, active run) and the results already produced for the active run, so a process that
stops mid-run can resume it without executing a tool twice.

# Usage

	remote := openai.New(openai.Config{APIKey: os.Getenv("OPENAI_API_KEY")})

	tools := registry.New()
	tools.MustRegister(domain.Tool{
		Name:       "getNickname",
		Parameters: registry.Object(map[string]any{"location": registry.String("City name")}, "location"),
	}, registry.Func(func(ctx context.Context, args struct {
		Location string `json:"location"`
	}) (string, error) {
		return "The Windy City", nil
	}))

	client, err := relay.New(ctx, remote, relay.WithRegistry(tools))
	if err != nil {
		log.Fatal(err)
	}

	thread, _ := client.NewThread(ctx)
	reply, err := client.Ask(ctx, thread, "What's the nickname of Chicago?")

The cmd/relay binary wires the same pieces behind a CLI, an HTTP server and an MCP server.
*/
package relay
