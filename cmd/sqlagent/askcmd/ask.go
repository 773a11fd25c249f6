package askcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ai-sqlagent-be/internal/bootstrap"
	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/agent/pipeline"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const askLongDesc string = `Start an interactive conversation with the agent.

Each line is one question; the conversation history carries over between
questions. Type "exit" or "quit" to leave.

Examples:
  sqlagent ask
  sqlagent ask --show-sql
  sqlagent ask "How many customers signed up last month?"`

const askShortDesc string = "Ask questions interactively"

// Runner is satisfied by *pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, question string, hist history.History) (pipeline.State, error)
}

type askCommander struct {
	showSQL    bool
	maxEntries int
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cmder.maxEntries = cfg.Agent.HistoryMaxEntries

			appDB, targetDB, err := bootstrap.OpenDatabases(cfg)
			if err != nil {
				return err
			}
			log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
			defer log.Sync()

			agent, err := bootstrap.NewAgent(cmd.Context(), appDB, targetDB, cfg, log)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				_, err := cmder.turn(cmd.Context(), cmd.OutOrStdout(), agent.Orchestrator, args[0], history.New())
				return err
			}
			return cmder.loop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), agent.Orchestrator)
		},
	}

	cmd.Flags().BoolVar(&cmder.showSQL, "show-sql", false, "Print the generated query and its result")

	return cmd
}

func isExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

// loop reads questions until EOF or exit/quit. A failed turn is reported and
// the conversation continues with the history it had before.
func (c *askCommander) loop(ctx context.Context, in io.Reader, out io.Writer, runner Runner) error {
	prompt := color.New(color.FgCyan, color.Bold)
	scanner := bufio.NewScanner(in)
	hist := history.New()

	for {
		prompt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}

		next, err := c.turn(ctx, out, runner, line, hist)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		hist = next
	}
}

func (c *askCommander) turn(ctx context.Context, out io.Writer, runner Runner, question string, hist history.History) (history.History, error) {
	state, err := runner.Run(ctx, question, hist)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
		return hist, err
	}

	if c.showSQL && state.Query != "" {
		color.New(color.FgYellow).Fprintf(out, "SQL: %s\n", state.Query)
		color.New(color.Faint).Fprintf(out, "Result: %s\n", state.Result)
	}
	color.New(color.FgGreen).Fprintln(out, state.Answer)
	return state.History.Window(c.maxEntries), nil
}
