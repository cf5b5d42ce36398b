package database

import (
	"context"
	"errors"
	"net"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/tonypoem-foundation/site-backend/errs"
)

// storeError classifies a driver error. Not-found is never passed here; the
// drivers return ErrNotFound for it directly.
func storeError(operation, target string, err error) error {
	return errs.NewDatabaseError(operation, target, classify(err), err)
}

func classify(err error) errs.StoreFailure {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return errs.StoreTimeout
	case errors.Is(err, gorm.ErrDuplicatedKey), mongo.IsDuplicateKeyError(err):
		return errs.StoreDuplicate
	case mongo.IsNetworkError(err), errors.As(err, &netErr):
		return errs.StoreUnavailable
	default:
		return errs.StoreQueryFailed
	}
}
