package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/clock"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/liveevents"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/logger"
	obsmetrics "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/metrics"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/receipt"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250

	messageNoImage = "No image provided"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Classifier *Classifier
	Clock      clock.Clock
	Cfg        config.Config

	Locker  domain.IngestLocker        `optional:"true"`
	Hub     *liveevents.Hub            `optional:"true"`
	Metrics *obsmetrics.Metrics        `optional:"true"`
	Policy  *config.IngestPolicyHolder `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock

	classifier    *Classifier
	ingestTimeout time.Duration

	locker  domain.IngestLocker
	hub     *liveevents.Hub
	metrics *obsmetrics.Metrics
	policy  *config.IngestPolicyHolder
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	classifier := p.Classifier
	if classifier == nil {
		classifier = NewClassifier(p.Repo, clk)
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: clk,

		classifier:    classifier,
		ingestTimeout: p.Cfg.IngestTimeout,

		locker:  p.Locker,
		hub:     p.Hub,
		metrics: p.Metrics,
		policy:  p.Policy,
	}
}

// receiptInput is the normalized view of an incoming receipt image and OCR block.
type receiptInput struct {
	imageHash   string
	imageSize   int64
	fingerprint string
	ocrDate     time.Time
}

func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.IngestResult{}, domain.ErrInvalidCompany
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return domain.IngestResult{}, domain.ErrInvalidProject
	}
	store := strings.TrimSpace(req.Store)
	if store == "" {
		return domain.IngestResult{}, domain.ErrInvalidStore
	}
	// amounts are stored in cents
	if req.Amount == nil || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) || roundCents(*req.Amount) <= 0 {
		return domain.IngestResult{}, domain.ErrInvalidAmount
	}

	date := s.clock.Now().UTC()
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := receipt.ParseDate(raw)
		if err != nil {
			return domain.IngestResult{}, domain.ErrInvalidDate
		}
		date = parsed
	}

	in, err := s.prepareReceipt(req.ImageBase64, req.OCR)
	if err != nil {
		return domain.IngestResult{}, err
	}

	if s.ingestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ingestTimeout)
		defer cancel()
	}

	log := logger.WithReceipt(ctx, s.log, companyID, projectID)

	if in.imageHash != "" {
		release, err := s.lockReceipt(ctx, log, companyID, in.imageHash)
		if err != nil {
			return domain.IngestResult{}, err
		}
		defer release()

		verdict, err := s.classifier.Classify(ctx, s.db, ClassifyInput{
			CompanyID:   companyID,
			ProjectID:   projectID,
			ImageHash:   in.imageHash,
			Fingerprint: in.fingerprint,
		})
		if err != nil {
			log.Error("duplicate classification failed", zap.Error(err))
			return domain.IngestResult{}, fmt.Errorf("classify receipt: %w", err)
		}
		s.recordVerdict(ctx, "ingest", verdict)

		switch {
		case verdict.DuplicateType == domain.DuplicateExact:
			log.Info("exact duplicate receipt rejected", zap.String("image_hash", in.imageHash))
			s.finish(ctx, companyID, projectID, domain.OutcomeRejected, verdict, nil, store, *req.Amount)
			return domain.IngestResult{Outcome: domain.OutcomeRejected, Verdict: verdict}, nil
		case verdict.DuplicateType == domain.DuplicateSimilar && !req.OverrideDuplicateWarning:
			log.Info("similar receipt warning issued", zap.String("fingerprint", in.fingerprint))
			s.finish(ctx, companyID, projectID, domain.OutcomeWarned, verdict, nil, store, *req.Amount)
			return domain.IngestResult{Outcome: domain.OutcomeWarned, Verdict: verdict}, nil
		}
	}

	now := s.clock.Now().UTC()
	record := &domain.Expense{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		ProjectID:   projectID,
		Type:        strings.TrimSpace(req.Type),
		Subcategory: strings.TrimSpace(req.Subcategory),
		Amount:      roundCents(*req.Amount),
		Store:       store,
		Date:        date,
		ReceiptURL:  optionalString(req.ReceiptURL),
		UploadedBy:  optionalString(req.UploadedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.imageHash != "" {
		record.ImageHash = &in.imageHash
		record.ImageSizeBytes = &in.imageSize
	}
	if in.fingerprint != "" {
		record.OcrFingerprint = &in.fingerprint
	}
	if req.OCR != nil {
		record.OcrData = datatypes.JSONMap{
			"store":  req.OCR.Store,
			"amount": req.OCR.Amount,
			"date":   req.OCR.Date,
		}
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			log.Warn("concurrent ingest of same receipt lost the race", zap.String("image_hash", in.imageHash))
			s.metrics.RecordIngestConflict(ctx, "unique_violation")
			return domain.IngestResult{}, domain.ErrDuplicateConflict
		}
		log.Error("failed to persist expense", zap.Error(err))
		return domain.IngestResult{}, fmt.Errorf("insert expense: %w", err)
	}

	verdict := domain.Verdict{IsDuplicate: false, CanOverride: true, Message: messageNoDuplicate}
	s.finish(ctx, companyID, projectID, domain.OutcomeCreated, verdict, record, store, record.Amount)
	return domain.IngestResult{Outcome: domain.OutcomeCreated, Verdict: verdict, Expense: record}, nil
}

func (s *Service) CheckDuplicate(ctx context.Context, req domain.CheckDuplicateRequest) (domain.Verdict, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.Verdict{}, domain.ErrInvalidCompany
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return domain.Verdict{}, domain.ErrInvalidProject
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return domain.Verdict{IsDuplicate: false, CanOverride: true, Message: messageNoImage}, nil
	}

	in, err := s.prepareReceipt(req.ImageBase64, req.OCR)
	if err != nil {
		return domain.Verdict{}, err
	}

	verdict, err := s.classifier.Classify(ctx, s.db, ClassifyInput{
		CompanyID:   companyID,
		ProjectID:   projectID,
		ImageHash:   in.imageHash,
		Fingerprint: in.fingerprint,
	})
	if err != nil {
		logger.WithReceipt(ctx, s.log, companyID, projectID).Error("duplicate check failed", zap.Error(err))
		return domain.Verdict{}, fmt.Errorf("classify receipt: %w", err)
	}
	s.recordVerdict(ctx, "check", verdict)
	return verdict, nil
}

func (s *Service) List(ctx context.Context, req domain.ListExpenseRequest) (domain.ListExpenseResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.ListExpenseResponse{}, domain.ErrInvalidCompany
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListExpenseFilter{
		ProjectID: strings.TrimSpace(req.ProjectID),
	}, pagination.Pagination{
		PageToken: strings.TrimSpace(req.PageToken),
		PageSize:  int(pageSize),
	})
	if err != nil {
		if strings.TrimSpace(req.PageToken) != "" && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return domain.ListExpenseResponse{}, domain.ErrInvalidPageToken
		}
		return domain.ListExpenseResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(e *domain.Expense) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:   e.ID.String(),
			Date: e.Date.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	expenses := make([]domain.Expense, 0, len(items))
	for _, item := range items {
		if item != nil {
			expenses = append(expenses, *item)
		}
	}

	resp := domain.ListExpenseResponse{Expenses: expenses}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetExpenseRequest) (domain.Expense, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.Expense{}, domain.ErrInvalidCompany
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Expense{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Expense{}, err
	}
	if item == nil {
		return domain.Expense{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteExpenseRequest) error {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.ErrInvalidCompany
	}
	id, err := parseID(req.ID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.hub.Publish(liveevents.Event{
		CompanyID:  companyID,
		ExpenseID:  id.String(),
		Decision:   liveevents.DecisionDeleted,
		OccurredAt: s.clock.Now().UTC(),
	})
	return nil
}

// prepareReceipt hashes the image and fingerprints the OCR block. Both are optional.
func (s *Service) prepareReceipt(imageBase64 string, ocr *domain.OCRData) (receiptInput, error) {
	var in receiptInput

	if strings.TrimSpace(imageBase64) != "" {
		policy := s.policy.Get()
		if policy.StrictBase64 && !receipt.ValidBase64(imageBase64) {
			return receiptInput{}, domain.ErrInvalidImage
		}
		in.imageSize = receipt.ByteSize(imageBase64)
		if policy.MaxImageBytes > 0 && in.imageSize > policy.MaxImageBytes {
			return receiptInput{}, domain.ErrInvalidImageSize
		}
		in.imageHash = receipt.Hash(imageBase64)
	}

	if ocr != nil && strings.TrimSpace(ocr.Date) != "" {
		parsed, err := receipt.ParseDate(ocr.Date)
		if err != nil {
			return receiptInput{}, domain.ErrInvalidOCRDate
		}
		in.ocrDate = parsed
	}
	if ocr.Complete() {
		in.fingerprint = receipt.Fingerprint(ocr.Store, ocr.Amount, in.ocrDate)
	}
	return in, nil
}

// lockReceipt holds the per-image ingest lock when the guard is configured.
// Guard failures fall through to the unique index.
func (s *Service) lockReceipt(ctx context.Context, log *zap.Logger, companyID, imageHash string) (func(), error) {
	noop := func() {}
	if s.locker == nil || !s.locker.Enabled() {
		return noop, nil
	}

	token, ok, err := s.locker.TryLockReceipt(ctx, companyID, imageHash)
	if err != nil {
		log.Warn("receipt ingest lock unavailable, relying on unique index", zap.Error(err))
		return noop, nil
	}
	if !ok {
		s.metrics.RecordIngestConflict(ctx, "lock_busy")
		return nil, domain.ErrDuplicateConflict
	}

	return func() {
		// the request context may already be done; release on a fresh one
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.locker.ReleaseReceipt(releaseCtx, companyID, imageHash, token); err != nil {
			log.Warn("failed to release receipt ingest lock", zap.Error(err))
		}
	}, nil
}

func (s *Service) recordVerdict(ctx context.Context, source string, verdict domain.Verdict) {
	s.metrics.RecordDuplicateVerdict(ctx, source, string(verdict.DuplicateType))
}

func (s *Service) finish(
	ctx context.Context,
	companyID, projectID string,
	outcome domain.IngestOutcome,
	verdict domain.Verdict,
	record *domain.Expense,
	store string,
	amount float64,
) {
	s.metrics.RecordExpenseIngest(ctx, string(outcome))

	event := liveevents.Event{
		CompanyID:     companyID,
		ProjectID:     projectID,
		Decision:      string(outcome),
		DuplicateType: string(verdict.DuplicateType),
		Store:         store,
		Amount:        amount,
		OccurredAt:    s.clock.Now().UTC(),
	}
	if record != nil {
		event.ExpenseID = record.ID.String()
	}
	s.hub.Publish(event)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
