package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, expense *Expense) error
	FindByImageHash(ctx context.Context, db *gorm.DB, companyID, imageHash string) (*Expense, error)
	FindSimilar(ctx context.Context, db *gorm.DB, companyID, projectID, fingerprint string, since time.Time) (*Expense, error)
	FindByID(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, db *gorm.DB, companyID string, filter ListExpenseFilter, page pagination.Pagination) ([]*Expense, error)
	Delete(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (bool, error)
}

// IngestLocker serializes concurrent ingests of the same receipt image within a company.
type IngestLocker interface {
	Enabled() bool
	TryLockReceipt(ctx context.Context, companyID, imageHash string) (string, bool, error)
	ReleaseReceipt(ctx context.Context, companyID, imageHash, token string) error
}
