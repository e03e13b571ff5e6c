package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db/pagination"
	"gorm.io/gorm"
)

const expenseColumns = `id, company_id, project_id, type, subcategory, amount, store, date,
	receipt_url, image_hash, ocr_fingerprint, image_size_bytes, uploaded_by, ocr_data,
	created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.CompanyID,
		expense.ProjectID,
		expense.Type,
		expense.Subcategory,
		expense.Amount,
		expense.Store,
		expense.Date,
		expense.ReceiptURL,
		expense.ImageHash,
		expense.OcrFingerprint,
		expense.ImageSizeBytes,
		expense.UploadedBy,
		expense.OcrData,
		expense.CreatedAt,
		expense.UpdatedAt,
	).Error
}

func (r *repo) FindByImageHash(ctx context.Context, db *gorm.DB, companyID, imageHash string) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).Raw(
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE company_id = ? AND image_hash = ?
		 LIMIT 1`,
		companyID,
		imageHash,
	).Scan(&expense).Error
	if err != nil {
		return nil, err
	}
	if expense.ID == 0 {
		return nil, nil
	}
	return &expense, nil
}

func (r *repo) FindSimilar(ctx context.Context, db *gorm.DB, companyID, projectID, fingerprint string, since time.Time) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).Raw(
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE company_id = ? AND project_id = ? AND ocr_fingerprint = ? AND date >= ?
		 ORDER BY date DESC, id DESC
		 LIMIT 1`,
		companyID,
		projectID,
		fingerprint,
		since,
	).Scan(&expense).Error
	if err != nil {
		return nil, err
	}
	if expense.ID == 0 {
		return nil, nil
	}
	return &expense, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).Raw(
		`SELECT `+expenseColumns+`
		 FROM expenses WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&expense).Error
	if err != nil {
		return nil, err
	}
	if expense.ID == 0 {
		return nil, nil
	}
	return &expense, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID string, filter domain.ListExpenseFilter, page pagination.Pagination) ([]*domain.Expense, error) {
	var expenses []*domain.Expense
	stmt := db.WithContext(ctx).
		Model(&domain.Expense{}).
		Where("company_id = ?", companyID)
	if filter.ProjectID != "" {
		stmt = stmt.Where("project_id = ?", filter.ProjectID)
	}
	if token := strings.TrimSpace(page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		date, err := time.Parse(time.RFC3339Nano, cursor.Date)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("((date < ?) OR (date = ? AND id < ?))", date.UTC(), date.UTC(), id)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("date desc, id desc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM expenses WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
