package ingestcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-sqlagent-be/internal/dto"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingKB struct {
	requests []*dto.IngestDocumentRequest
}

func (r *recordingKB) IngestDocument(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	r.requests = append(r.requests, req)
	return &dto.IngestDocumentResponse{Source: req.Source, Chunks: 1}, nil
}

func (r *recordingKB) DeleteDocument(ctx context.Context, source string) error { return nil }

func TestRun_SourceDefaultsToBaseName(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.md")
	require.NoError(t, os.WriteFile(path, []byte("Refunds within 30 days."), 0o644))

	kb := &recordingKB{}
	var out bytes.Buffer
	require.NoError(t, (&ingestCommander{}).run(context.Background(), &out, kb, []string{path}))

	require.Len(t, kb.requests, 1)
	assert.Equal(t, "policy.md", kb.requests[0].Source)
	assert.Equal(t, "Refunds within 30 days.", kb.requests[0].Content)
	assert.Contains(t, out.String(), `1 chunks stored as "policy.md"`)
}

func TestRun_ExplicitSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))

	kb := &recordingKB{}
	require.NoError(t, (&ingestCommander{source: "handbook"}).run(context.Background(), &bytes.Buffer{}, kb, []string{path}))
	assert.Equal(t, "handbook", kb.requests[0].Source)
}

func TestRun_MissingFile(t *testing.T) {
	err := (&ingestCommander{}).run(context.Background(), &bytes.Buffer{}, &recordingKB{}, []string{"/does/not/exist"})
	assert.ErrorContains(t, err, "read /does/not/exist")
}
