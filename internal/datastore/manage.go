package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warning level.
const DefaultSlowQueryThreshold = 1 * time.Second

// performAutoMigration runs the GORM auto-migration for the record schema.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Identification{}); err != nil {
		return errors.New(fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Build()
	}
	if debug {
		logging.Debug("database connection initialized", "db_type", dbType, "connection", connectionInfo)
	}
	return nil
}

// createGormLogger configures and returns a new GORM logger instance backed
// by the application's structured logger.
func createGormLogger() gormlogger.Interface {
	return &slogGormLogger{
		log:           logging.ForService("datastore"),
		level:         gormlogger.Warn,
		slowThreshold: DefaultSlowQueryThreshold,
	}
}

// slogGormLogger adapts slog to gormlogger.Interface.
type slogGormLogger struct {
	log           *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		l.log.ErrorContext(ctx, "query failed",
			"error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.WarnContext(ctx, "slow query",
			"sql", sql, "rows", rows, "elapsed", elapsed, "threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		l.log.DebugContext(ctx, "query",
			"sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
