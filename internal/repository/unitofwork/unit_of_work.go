package unitofwork

import (
	"context"

	"ai-sqlagent-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one optional transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TurnRepository() contract.TurnRepository
	KBChunkRepository() contract.KBChunkRepository
}
