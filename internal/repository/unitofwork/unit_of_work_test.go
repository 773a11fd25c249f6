package unitofwork

import (
	"context"
	"testing"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newFactory(t *testing.T) RepositoryFactory {
	t.Helper()
	db, err := gorm.Open(sqlitedriver.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.AgentTurn{}))
	return NewRepositoryFactory(db)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	factory := newFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.TurnRepository().Create(ctx, &entity.Turn{SessionId: uuid.New(), Question: "q"}))
	require.NoError(t, uow.Rollback())

	count, err := factory.NewUnitOfWork(ctx).TurnRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUnitOfWork_Commit(t *testing.T) {
	ctx := context.Background()
	factory := newFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	require.NoError(t, uow.TurnRepository().Create(ctx, &entity.Turn{SessionId: uuid.New(), Question: "q"}))
	require.NoError(t, uow.Commit())
	assert.NoError(t, uow.Rollback())

	count, err := factory.NewUnitOfWork(ctx).TurnRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnitOfWork_BeginTwice(t *testing.T) {
	ctx := context.Background()
	uow := newFactory(t).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	assert.Error(t, uow.Begin(ctx))
}
