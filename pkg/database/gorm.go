package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DriverSQLServer covers SQL Server and Azure SQL; "mssql" is accepted as
// an alias.
const (
	DriverPostgres  = "postgres"
	DriverRedshift  = "redshift"
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
	driverMSSQL     = "mssql"
)

// IsSQLServer reports whether driver names a SQL Server target.
func IsSQLServer(driver string) bool {
	switch strings.ToLower(driver) {
	case DriverSQLServer, driverMSSQL:
		return true
	}
	return false
}

// PoolConfig bounds the database/sql pool behind a gorm handle.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool suits the application database.
var DefaultPool = PoolConfig{MaxIdleConns: 10, MaxOpenConns: 100, ConnMaxLifetime: time.Hour}

// targetPool is smaller: generated queries are read-only and one per turn.
var targetPool = PoolConfig{MaxIdleConns: 2, MaxOpenConns: 10, ConnMaxLifetime: 30 * time.Minute}

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, pool PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return nil
}

// NewGormDBFromDSN opens the application database (turn log, KB chunks,
// table embeddings) on postgres.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, DefaultPool); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenTarget connects to the database the agent answers questions about.
// Redshift speaks the postgres wire protocol but rejects extended-protocol
// statement caching, hence the simple protocol.
func OpenTarget(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverPostgres, DriverRedshift, "":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverSQLServer, driverMSSQL:
		dialector = sqlserver.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported target driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: getLogger(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	pool := targetPool
	if strings.EqualFold(driver, DriverSQLite) {
		// in-memory databases are per connection
		pool = PoolConfig{MaxIdleConns: 1, MaxOpenConns: 1}
	}
	if err := configureConnectionPool(db, pool); err != nil {
		return nil, err
	}
	return db, nil
}
