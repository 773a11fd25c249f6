// Package executor runs synthesized queries and stringifies their results.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-sqlagent-be/internal/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"gorm.io/gorm"
)

const (
	FailurePrefix = "Query failed: "
	// EmptyResult is what a query returning no rows renders to.
	EmptyResult = "[]"

	// truncatedNote follows the JSON array when rows past the cap were dropped.
	truncatedNote = "\nResult truncated to %d rows."

	DefaultTimeout = 30 * time.Second
	DefaultMaxRows = 200
)

// Executor never returns an error: failures come back as text starting with
// FailurePrefix so they can be explained to the user.
type Executor interface {
	Execute(ctx context.Context, query string) string
}

// IsFailure reports whether result is a failure description.
func IsFailure(result string) bool {
	return strings.HasPrefix(result, FailurePrefix)
}

// IsEmpty reports whether result carries no rows.
func IsEmpty(result string) bool {
	r := strings.TrimSpace(result)
	return r == "" || r == EmptyResult
}

type Options struct {
	Timeout time.Duration
	MaxRows int
}

type GormExecutor struct {
	db     *gorm.DB
	opts   Options
	logger logger.ILogger
}

func NewGormExecutor(db *gorm.DB, opts Options, log logger.ILogger) *GormExecutor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &GormExecutor{db: db, opts: opts, logger: log}
}

func (e *GormExecutor) Execute(ctx context.Context, query string) string {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	out, err := e.run(ctx, query)
	if err != nil {
		e.logger.Warn("EXECUTOR", "Query failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return Failure(err)
	}
	return out
}

func (e *GormExecutor) run(ctx context.Context, query string) (string, error) {
	rows, err := e.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	n := 0
	truncated := false
	for rows.Next() {
		// a row past the cap exists; it is not read
		if n == e.opts.MaxRows {
			truncated = true
			e.logger.Warn("EXECUTOR", "Result truncated", map[string]interface{}{"max_rows": e.opts.MaxRows})
			break
		}
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		if err := writeRow(&buf, columns, values); err != nil {
			return "", err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	buf.WriteByte(']')
	if truncated {
		fmt.Fprintf(&buf, truncatedNote, e.opts.MaxRows)
	}
	return buf.String(), nil
}

// writeRow encodes one row as a JSON object keeping select order.
func writeRow(buf *bytes.Buffer, columns []string, values []interface{}) error {
	buf.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(normalize(values[i]))
		if err != nil {
			return fmt.Errorf("encode column %s: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

func normalize(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Failure renders err as result text. Database errors keep their SQLSTATE
// or SQL Server error number.
func Failure(err error) string {
	var pgErr *pgconn.PgError
	var msErr mssql.Error
	switch {
	case errors.As(err, &pgErr):
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg += " (" + pgErr.Detail + ")"
		}
		return fmt.Sprintf("%s%s [SQLSTATE %s]", FailurePrefix, msg, pgErr.Code)
	case errors.As(err, &msErr):
		return fmt.Sprintf("%s%s [error %d]", FailurePrefix, msErr.Message, msErr.Number)
	case errors.Is(err, context.DeadlineExceeded):
		return FailurePrefix + "query timed out"
	default:
		return FailurePrefix + err.Error()
	}
}
