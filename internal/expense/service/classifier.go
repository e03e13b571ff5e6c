package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/clock"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/receipt"
	"gorm.io/gorm"
)

const (
	messageExact       = "This receipt has already been added. You cannot add the same receipt image twice."
	messageSimilarTmpl = "A similar receipt was found (%s, $%.2f on %s). This might be a duplicate."
	messageNoDuplicate = "No duplicate found"
)

// ClassifyInput is what the classifier needs to look up prior records.
// An empty ImageHash skips the exact check; an empty Fingerprint or ProjectID skips the similar check.
type ClassifyInput struct {
	CompanyID   string
	ProjectID   string
	ImageHash   string
	Fingerprint string
}

// Classifier decides whether an incoming receipt repeats one already recorded.
type Classifier struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewClassifier(repo domain.Repository, clk clock.Clock) *Classifier {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Classifier{repo: repo, clock: clk}
}

// Classify runs the exact check first and the similar check second; the first match wins.
func (c *Classifier) Classify(ctx context.Context, db *gorm.DB, in ClassifyInput) (domain.Verdict, error) {
	if in.ImageHash != "" {
		exact, err := c.repo.FindByImageHash(ctx, db, in.CompanyID, in.ImageHash)
		if err != nil {
			return domain.Verdict{}, err
		}
		if exact != nil {
			return domain.Verdict{
				IsDuplicate:    true,
				DuplicateType:  domain.DuplicateExact,
				MatchedExpense: toMatched(exact),
				CanOverride:    false,
				Message:        messageExact,
			}, nil
		}
	}

	if in.Fingerprint != "" && in.ProjectID != "" {
		since := SimilarCutoff(c.clock.Now())
		similar, err := c.repo.FindSimilar(ctx, db, in.CompanyID, in.ProjectID, in.Fingerprint, since)
		if err != nil {
			return domain.Verdict{}, err
		}
		if similar != nil {
			return domain.Verdict{
				IsDuplicate:    true,
				DuplicateType:  domain.DuplicateSimilar,
				MatchedExpense: toMatched(similar),
				CanOverride:    true,
				Message: fmt.Sprintf(messageSimilarTmpl,
					similar.Store, similar.Amount, receipt.FormatDate(similar.Date)),
			}, nil
		}
	}

	return domain.Verdict{IsDuplicate: false, CanOverride: true, Message: messageNoDuplicate}, nil
}

// SimilarCutoff returns the first instant still inside the lookback window:
// midnight UTC of the day SimilarLookbackDays before now.
func SimilarCutoff(now time.Time) time.Time {
	day := now.UTC().AddDate(0, 0, -domain.SimilarLookbackDays)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func toMatched(e *domain.Expense) *domain.MatchedExpense {
	return &domain.MatchedExpense{
		ID:        e.ID,
		Store:     e.Store,
		Amount:    e.Amount,
		Date:      receipt.FormatDate(e.Date),
		CreatedAt: e.CreatedAt,
	}
}
