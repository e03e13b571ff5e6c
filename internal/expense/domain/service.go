package domain

import (
	"context"
	"errors"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db/pagination"
)

// OCRData carries the fields extracted from the receipt image by the client.
type OCRData struct {
	Store  string
	Amount float64
	Date   string
}

// Complete reports whether OCR produced every field needed for a fingerprint.
func (o *OCRData) Complete() bool {
	return o != nil && o.Store != "" && o.Amount != 0 && o.Date != ""
}

type IngestRequest struct {
	CompanyID                string
	ProjectID                string
	Type                     string
	Subcategory              string
	Amount                   *float64
	Store                    string
	Date                     string
	ReceiptURL               string
	UploadedBy               string
	ImageBase64              string
	OCR                      *OCRData
	OverrideDuplicateWarning bool
}

type CheckDuplicateRequest struct {
	CompanyID   string
	ProjectID   string
	ImageBase64 string
	OCR         *OCRData
}

type ListExpenseRequest struct {
	CompanyID string
	ProjectID string
	PageToken string
	PageSize  int32
}

type ListExpenseFilter struct {
	ProjectID string
}

type ListExpenseResponse struct {
	pagination.PageInfo
	Expenses []Expense `json:"expenses"`
}

type GetExpenseRequest struct {
	CompanyID string
	ID        string
}

type DeleteExpenseRequest struct {
	CompanyID string
	ID        string
}

type Service interface {
	Ingest(context.Context, IngestRequest) (IngestResult, error)
	CheckDuplicate(context.Context, CheckDuplicateRequest) (Verdict, error)
	List(context.Context, ListExpenseRequest) (ListExpenseResponse, error)
	GetByID(context.Context, GetExpenseRequest) (Expense, error)
	Delete(context.Context, DeleteExpenseRequest) error
}

var (
	ErrInvalidCompany   = errors.New("invalid_company_id")
	ErrInvalidProject   = errors.New("invalid_project_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidStore     = errors.New("invalid_store")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidOCRDate   = errors.New("invalid_ocr_date")
	ErrInvalidImage     = errors.New("invalid_image")
	ErrInvalidImageSize = errors.New("invalid_image_size")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")

	// ErrDuplicateConflict means a concurrent ingest of the same image won the race.
	ErrDuplicateConflict = errors.New("duplicate_conflict")
)
