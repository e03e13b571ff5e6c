package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SimilarLookbackDays bounds how far back a fingerprint match counts as a probable duplicate.
const SimilarLookbackDays = 90

type Expense struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID      string            `gorm:"not null;uniqueIndex:ux_expenses_company_image_hash,priority:1;index:ix_expenses_company_date,priority:1" json:"companyId"`
	ProjectID      string            `gorm:"not null;index:ix_expenses_project_fingerprint_date,priority:1" json:"projectId"`
	Type           string            `gorm:"column:type" json:"type,omitempty"`
	Subcategory    string            `gorm:"column:subcategory" json:"subcategory,omitempty"`
	Amount         float64           `gorm:"type:numeric(12,2);not null" json:"amount"`
	Store          string            `gorm:"not null" json:"store"`
	Date           time.Time         `gorm:"not null;index:ix_expenses_project_fingerprint_date,priority:3;index:ix_expenses_company_date,priority:2" json:"date"`
	ReceiptURL     *string           `gorm:"column:receipt_url" json:"receiptUrl,omitempty"`
	ImageHash      *string           `gorm:"column:image_hash;uniqueIndex:ux_expenses_company_image_hash,priority:2" json:"imageHash"`
	OcrFingerprint *string           `gorm:"column:ocr_fingerprint;index:ix_expenses_project_fingerprint_date,priority:2" json:"ocrFingerprint"`
	ImageSizeBytes *int64            `gorm:"column:image_size_bytes" json:"imageSizeBytes,omitempty"`
	UploadedBy     *string           `gorm:"column:uploaded_by" json:"uploadedBy,omitempty"`
	OcrData        datatypes.JSONMap `gorm:"column:ocr_data;type:jsonb" json:"ocr,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

type DuplicateType string

const (
	DuplicateNone    DuplicateType = ""
	DuplicateExact   DuplicateType = "exact"
	DuplicateSimilar DuplicateType = "similar"
)

// Verdict is the outcome of a duplicate check. It is never persisted.
type Verdict struct {
	IsDuplicate    bool            `json:"isDuplicate"`
	DuplicateType  DuplicateType   `json:"duplicateType,omitempty"`
	MatchedExpense *MatchedExpense `json:"matchedExpense,omitempty"`
	CanOverride    bool            `json:"canOverride"`
	Message        string          `json:"message"`
}

type MatchedExpense struct {
	ID        snowflake.ID `json:"id"`
	Store     string       `json:"store"`
	Amount    float64      `json:"amount"`
	Date      string       `json:"date"`
	CreatedAt time.Time    `json:"createdAt"`
}

type IngestOutcome string

const (
	OutcomeCreated  IngestOutcome = "created"
	OutcomeRejected IngestOutcome = "rejected"
	OutcomeWarned   IngestOutcome = "warned"
)

type IngestResult struct {
	Outcome IngestOutcome
	Verdict Verdict
	Expense *Expense
}

func (r IngestResult) Accepted() bool {
	return r.Outcome == OutcomeCreated
}
