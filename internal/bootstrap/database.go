package bootstrap

import (
	"fmt"

	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/pkg/database"

	"gorm.io/gorm"
)

// OpenDatabases connects to the application database, when configured, and
// to the target database.
func OpenDatabases(cfg *config.Config) (appDB, targetDB *gorm.DB, err error) {
	if cfg.Database.Connection != "" {
		appDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect application DB: %w", err)
		}
	}

	targetDB, err = database.OpenTarget(cfg.Database.TargetDriver, cfg.Database.TargetConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("connect target DB: %w", err)
	}
	return appDB, targetDB, nil
}
