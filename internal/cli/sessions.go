package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aretw0/relay/pkg/session"
	"gopkg.in/yaml.v3"
)

// ListSessions prints one line per stored session.
func ListSessions(ctx context.Context, mgr *session.Manager, w io.Writer) error {
	ids, err := mgr.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTHREAD\tACTIVE RUN\tUPDATED")
	for _, id := range ids {
		s, err := mgr.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t?\t%v\n", id, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, dash(s.ThreadID), dash(s.ActiveRunID), s.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

// InspectSession prints a stored session as YAML.
func InspectSession(ctx context.Context, mgr *session.Manager, id string, w io.Writer) error {
	s, err := mgr.Load(ctx, id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return enc.Close()
}

// RemoveSessions deletes the given sessions.
func RemoveSessions(ctx context.Context, mgr *session.Manager, ids []string, w io.Writer) error {
	for _, id := range ids {
		if err := mgr.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session %q: %w", id, err)
		}
		fmt.Fprintf(w, "Session '%s' deleted.\n", id)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
