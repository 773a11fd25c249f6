package watchcmd

import (
	"context"
	"fmt"
	"io"

	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/events"
	pktNats "ai-sqlagent-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const watchLongDesc string = `Follow finished agent turns as they are published on NATS.

Every API instance forwards its turns to the TURN_EVENTS_SUBJECT subject;
this command prints them as they arrive. Use --durable to resume from where
a previous run stopped.

Examples:
  sqlagent watch
  sqlagent watch --durable audit-tail`

const watchShortDesc string = "Follow agent turns published on NATS"

type watchCommander struct {
	durable string
}

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.App.NatsURL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, logger.NewNopLogger())
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			err = sub.Subscribe(cmd.Context(), cfg.App.TurnEventsSubject, cmder.durable, func(ctx context.Context, event events.Event) error {
				printTurn(out, event)
				return nil
			})
			if err != nil {
				return err
			}

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&cmder.durable, "durable", "", "Durable consumer name")

	return cmd
}

func printTurn(out io.Writer, event events.Event) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(out, "[%s] %s (%s", event.Timestamp().Format("15:04:05"),
		events.PayloadString(event, "question"), events.PayloadString(event, "route"))
	if ms := events.PayloadString(event, "duration_ms"); ms != "" {
		header.Fprintf(out, ", %sms", ms)
	}
	header.Fprintln(out, ")")

	if q := events.PayloadString(event, "query"); q != "" {
		color.New(color.FgYellow).Fprintf(out, "  SQL: %s\n", q)
	}
	if e := events.PayloadString(event, "error"); e != "" {
		color.New(color.FgRed).Fprintf(out, "  error: %s\n", e)
		return
	}
	color.New(color.FgGreen).Fprintf(out, "  %s\n", events.PayloadString(event, "answer"))
}
