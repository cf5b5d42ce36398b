package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/tonypoem-foundation/site-backend/config"
)

// Open connects to the store selected by DB_TYPE: "supa"/"postgres", "mongo"
// or "memory".
func Open(ctx context.Context, cfg map[string]string) (DocumentStore, error) {
	dbType := config.GetString(cfg, "DB_TYPE", "memory")
	zlog.Info().Str("dbType", dbType).Msg("Opening document store")

	switch dbType {
	case "supa", "postgres":
		db, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		return New(db), nil
	case "mongo":
		uri := config.GetString(cfg, "MONGO_URI", "")
		if uri == "" {
			return nil, fmt.Errorf("MONGO_URI is required when DB_TYPE=mongo")
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return NewMongoStore(connectCtx, uri, config.GetString(cfg, "MONGO_DATABASE", "foundation"))
	case "memory":
		zlog.Warn().Msg("Using in-memory document store; content is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// PostgresDSN builds the connection string from the SUPABASE_DB_* settings
// unless DATABASE_URL is set.
func PostgresDSN(cfg map[string]string) string {
	if dsn := config.GetString(cfg, "DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(cfg, "SUPABASE_DB_HOST", "localhost"),
		config.GetString(cfg, "SUPABASE_DB_USER", "postgres"),
		config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(cfg, "SUPABASE_DB_NAME", "postgres"),
		config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
		config.GetString(cfg, "SUPABASE_DB_SSLMODE", "require"),
	)
}

// OpenGorm opens the Postgres connection, registering read replicas from
// DB_REPLICA_DSNS when present.
func OpenGorm(cfg map[string]string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if replicas := config.GetList(cfg, "DB_REPLICA_DSNS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("error registering read replicas: %w", err)
		}
		zlog.Info().Int("replicas", len(dialectors)).Msg("Registered read replicas")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("error testing database connection: %w", err)
	}

	return db, nil
}
