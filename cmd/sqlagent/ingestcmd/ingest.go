package ingestcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ai-sqlagent-be/internal/bootstrap"
	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/repository/unitofwork"
	"ai-sqlagent-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const ingestLongDesc string = `Load documents into the knowledge base.

Each file is split into overlapping chunks, embedded and stored in the
application database. Re-ingesting a file replaces its previous chunks.
The source name defaults to the file's base name.

Examples:
  sqlagent ingest docs/refund-policy.md docs/glossary.md
  sqlagent ingest --source handbook handbook.txt`

const ingestShortDesc string = "Load documents into the knowledge base"

type ingestCommander struct {
	source string
}

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmder.source != "" && len(args) > 1 {
				return fmt.Errorf("--source can only be used with a single file")
			}

			cfg := config.Load()
			if cfg.Database.Connection == "" {
				return fmt.Errorf("DB_CONNECTION_STRING is required for the knowledge base")
			}
			appDB, _, err := bootstrap.OpenDatabases(cfg)
			if err != nil {
				return err
			}
			embedder, err := bootstrap.NewEmbeddingProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
			defer log.Sync()

			kb := service.NewKnowledgeBaseService(
				unitofwork.NewRepositoryFactory(appDB),
				embedder,
				cfg.Retrieval.ChunkSize,
				cfg.Retrieval.ChunkOverlap,
				log,
			)
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), kb, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.source, "source", "s", "", "Source name to store the document under")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, out io.Writer, kb service.IKnowledgeBaseService, paths []string) error {
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		source := c.source
		if source == "" {
			source = filepath.Base(path)
		}

		res, err := kb.IngestDocument(ctx, &dto.IngestDocumentRequest{Source: source, Content: string(content)})
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "%s: %v\n", path, err)
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "%s: %d chunks stored as %q\n", path, res.Chunks, res.Source)
	}
	return nil
}
