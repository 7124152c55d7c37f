package repo

import (
	"errors"
	"fmt"
	"strings"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

var ErrDuplicate = errors.New("duplicate key")

const (
	sqliteBusy             = 5
	sqliteLocked           = 6
	sqliteConstraintPK     = 1555
	sqliteConstraintUnique = 2067
)

// IsUniqueViolation recognises unique constraint failures from either backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *gosqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqliteConstraintUnique || sqErr.Code() == sqliteConstraintPK
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsRetryable reports store conflicts after which a transaction can be
// rerun from scratch.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}
	var sqErr *gosqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// requireUser fails with domain.ErrUserNotFound unless the user row exists.
// On Postgres the row is share-locked so an account deletion waits for tx.
func requireUser(tx *gorm.DB, userID uint) error {
	q := tx.Model(&models.User{}).Where("id = ?", userID)
	if isPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrUserNotFound)
	}
	return nil
}

func isPostgres(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "postgres"
}
