/*
Package runner implements the interactive session loop of relay.

It reads one user line per turn, sends it to the assistant through the orchestrator and
prints the reply. An empty line or "exit" ends the session; errors of a turn are printed and
the loop continues with the next turn.

# Key Components

  - Runner: The turn loop over a thread.
  - IOHandler: Decouples how lines are read and replies are shown (text, JSON lines).
  - TextHandler: The interactive CLI implementation with a cancellable line pump.

# Usage

	r := runner.NewRunner(conv, orch,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithThreadID(threadID),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
