package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tonypoem-foundation/site-backend/models"
)

// Database stores every collection in the shared documents table.
type Database struct {
	db *gorm.DB
}

// New wraps an open GORM connection.
func New(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	tx := d.db.WithContext(ctx).Where("collection = ?", collection)

	if q.Field != "" {
		tx = tx.Where(datatypes.JSONQuery("fields").Equals(q.Equals, q.Field))
	}

	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "fields ->> ? DESC",
			Vars:               []any{q.OrderBy},
			WithoutParentheses: true,
		}})
	} else {
		tx = tx.Order("created_at ASC")
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []models.Document
	if err := tx.Find(&rows).Error; err != nil {
		return nil, storeError("list", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.ID.String(), Fields: row.Fields})
	}
	return docs, nil
}

func (d *Database) Get(ctx context.Context, collection, id string) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return Document{}, ErrNotFound
	}

	var row models.Document
	err = d.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, docID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, storeError("get", collection+"/"+id, err)
	}
	return Document{ID: row.ID.String(), Fields: row.Fields}, nil
}

func (d *Database) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	row := models.Document{
		ID:         uuid.New(),
		Collection: collection,
		Fields:     datatypes.JSONMap(fields),
		CreatedAt:  time.Now().UTC(),
	}
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", storeError("insert into", collection, err)
	}
	return row.ID.String(), nil
}

func (d *Database) Delete(ctx context.Context, collection, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	result := d.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, docID).
		Delete(&models.Document{})
	if result.Error != nil {
		return storeError("delete", collection+"/"+id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	log.Debug().Msg("Closing database connection")
	return sqlDB.Close()
}
