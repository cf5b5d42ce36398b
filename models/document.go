package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is the relational row backing a record: one table for every
// collection, with the record fields kept in a jsonb column.
type Document struct {
	ID         uuid.UUID         `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Collection string            `json:"collection" db:"collection" gorm:"type:text;not null;index:idx_documents_collection"`
	Fields     datatypes.JSONMap `json:"fields" db:"fields" gorm:"not null"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;index:idx_documents_created_at"`
}

func (Document) TableName() string {
	return "documents"
}
