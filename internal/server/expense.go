package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
)

type ocrRequest struct {
	Store  string  `json:"store"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

type createExpenseRequest struct {
	CompanyID                string      `json:"companyId"`
	ProjectID                string      `json:"projectId"`
	Type                     string      `json:"type"`
	Subcategory              string      `json:"subcategory"`
	Amount                   *float64    `json:"amount"`
	Store                    string      `json:"store"`
	Date                     string      `json:"date"`
	ReceiptURL               string      `json:"receiptUrl"`
	UploadedBy               string      `json:"uploadedBy"`
	ImageBase64              string      `json:"imageBase64"`
	OCR                      *ocrRequest `json:"ocr"`
	OverrideDuplicateWarning bool        `json:"overrideDuplicateWarning"`
}

type checkDuplicateRequest struct {
	CompanyID   string      `json:"companyId"`
	ProjectID   string      `json:"projectId"`
	ImageBase64 string      `json:"imageBase64"`
	OCR         *ocrRequest `json:"ocr"`
}

type createExpenseResponse struct {
	Success bool                   `json:"success"`
	Expense *expensedomain.Expense `json:"expense"`
}

func (r *ocrRequest) toDomain() *expensedomain.OCRData {
	if r == nil {
		return nil
	}
	return &expensedomain.OCRData{
		Store:  strings.TrimSpace(r.Store),
		Amount: r.Amount,
		Date:   strings.TrimSpace(r.Date),
	}
}

// CreateExpense runs the ingestion gate. Exact duplicates answer 409 with the
// verdict, similar ones 200 with the verdict, and stored expenses 201.
func (s *Server) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	scopeCompany(c, req.CompanyID)
	scopeActor(c, req.UploadedBy)

	result, err := s.expenseSvc.Ingest(c.Request.Context(), expensedomain.IngestRequest{
		CompanyID:                req.CompanyID,
		ProjectID:                req.ProjectID,
		Type:                     req.Type,
		Subcategory:              req.Subcategory,
		Amount:                   req.Amount,
		Store:                    req.Store,
		Date:                     req.Date,
		ReceiptURL:               req.ReceiptURL,
		UploadedBy:               req.UploadedBy,
		ImageBase64:              req.ImageBase64,
		OCR:                      req.OCR.toDomain(),
		OverrideDuplicateWarning: req.OverrideDuplicateWarning,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("ingest_decision", string(result.Outcome))

	switch result.Outcome {
	case expensedomain.OutcomeRejected:
		c.JSON(http.StatusConflict, result.Verdict)
	case expensedomain.OutcomeWarned:
		c.JSON(http.StatusOK, result.Verdict)
	default:
		c.JSON(http.StatusCreated, createExpenseResponse{Success: true, Expense: result.Expense})
	}
}

func (s *Server) CheckDuplicateReceipt(c *gin.Context) {
	var req checkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	scopeCompany(c, req.CompanyID)

	verdict, err := s.expenseSvc.CheckDuplicate(c.Request.Context(), expensedomain.CheckDuplicateRequest{
		CompanyID:   req.CompanyID,
		ProjectID:   req.ProjectID,
		ImageBase64: req.ImageBase64,
		OCR:         req.OCR.toDomain(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

func (s *Server) ListExpenses(c *gin.Context) {
	companyID := strings.TrimSpace(c.Query("companyId"))
	scopeCompany(c, companyID)

	pageSize, err := parsePageSize(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "page_size must be between 1 and 250"))
		return
	}

	resp, err := s.expenseSvc.List(c.Request.Context(), expensedomain.ListExpenseRequest{
		CompanyID: companyID,
		ProjectID: c.Query("projectId"),
		PageToken: c.Query("page_token"),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetExpense(c *gin.Context) {
	companyID := strings.TrimSpace(c.Query("companyId"))
	scopeCompany(c, companyID)

	expense, err := s.expenseSvc.GetByID(c.Request.Context(), expensedomain.GetExpenseRequest{
		CompanyID: companyID,
		ID:        c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expense})
}

func (s *Server) DeleteExpense(c *gin.Context) {
	companyID := strings.TrimSpace(c.Query("companyId"))
	scopeCompany(c, companyID)

	if err := s.expenseSvc.Delete(c.Request.Context(), expensedomain.DeleteExpenseRequest{
		CompanyID: companyID,
		ID:        c.Param("id"),
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
