package main

import (
	"context"
	"os"
	"os/signal"

	"ai-sqlagent-be/cmd/sqlagent/askcmd"
	"ai-sqlagent-be/cmd/sqlagent/ingestcmd"
	"ai-sqlagent-be/cmd/sqlagent/watchcmd"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "sqlagent",
		Short:         "Ask questions about your database in plain language",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(askcmd.NewAskCmd(), ingestcmd.NewIngestCmd(), watchcmd.NewWatchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
