package models

import (
	"fmt"
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

	site report

The report lists, for every table backing a model, the database columns that
the Go struct does not declare. Run it after editing a model and before
migrating to spot drift between the schema and the code.

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: documents ---
Found 1 columns not accounted for in model:
  - updated_at

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// migrationLogger logs every statement; migrations are rare and worth reading.
func migrationLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
		Logger:                 migrationLogger(),
	})

	if err := migrateDB.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := migrateDB.AutoMigrate(&Document{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// Equality filters run against jsonb keys.
	if err := migrateDB.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_fields ON documents USING GIN (fields jsonb_path_ops)`).Error; err != nil {
		return fmt.Errorf("create fields index: %w", err)
	}
	return nil
}

// GenerateModels migrates the schema and writes typed query helpers to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if outPath == "" {
		outPath = "./generated"
	}

	if err := Migrate(db); err != nil {
		return err
	}
	zlog.Info().Msg("Schema migrated")
	GenerateColumnMismatchReport(db)

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Document{})
	g.Execute()
	zlog.Info().Str("outPath", outPath).Msg("Query helpers generated")
	return nil
}

// tableDrift is one model's table and the columns its struct does not declare.
type tableDrift struct {
	table   string
	missing bool
	extra   []string
}

func columnDrift(db *gorm.DB, model any) (tableDrift, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return tableDrift{}, fmt.Errorf("parse %T: %w", model, err)
	}
	drift := tableDrift{table: stmt.Schema.Table}
	if !db.Migrator().HasTable(drift.table) {
		drift.missing = true
		return drift, nil
	}

	columnTypes, err := db.Migrator().ColumnTypes(drift.table)
	if err != nil {
		return drift, fmt.Errorf("columns of %s: %w", drift.table, err)
	}
	columns := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ct.Name()
	}
	drift.extra = findColumnMismatches(columns, stmt.Schema.DBNames)
	return drift, nil
}

// GenerateColumnMismatchReport prints, per model table, the database columns
// the Go struct does not declare and returns their total.
func GenerateColumnMismatchReport(db *gorm.DB) int {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	total := 0
	for _, model := range []any{&Document{}} {
		drift, err := columnDrift(db, model)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("\n--- Table: %s ---\n", drift.table)
		switch {
		case drift.missing:
			fmt.Println("Table does not exist yet (will be created during migration)")
		case len(drift.extra) == 0:
			fmt.Println("All columns are accounted for in the model.")
		default:
			fmt.Printf("Found %d columns not accounted for in model:\n", len(drift.extra))
			for _, col := range drift.extra {
				fmt.Printf("  - %s\n", col)
			}
			total += len(drift.extra)
		}
	}

	fmt.Printf("\n=== SUMMARY ===\nTotal mismatched columns across all tables: %d\n", total)
	return total
}

// findColumnMismatches returns dbColumns absent from modelFields, in order.
func findColumnMismatches(dbColumns, modelFields []string) []string {
	declared := make(map[string]struct{}, len(modelFields))
	for _, field := range modelFields {
		declared[field] = struct{}{}
	}

	var extra []string
	for _, col := range dbColumns {
		if _, ok := declared[col]; !ok {
			extra = append(extra, col)
		}
	}
	return extra
}
