package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/logger"
	obsmetrics "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/metrics"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/ratelimit"
	"go.uber.org/zap"
)

const rateLimitReasonCompanyRate = "company-rate"

type expenseIngestRateLimitKey struct {
	CompanyID string `json:"companyId"`
}

// companyLimiter is the slice of the redis limiter the middleware needs.
type companyLimiter interface {
	Enabled() bool
	AllowCompany(ctx context.Context, companyID string) (*ratelimit.RateLimitResult, error)
}

func (s *Server) ExpenseIngestRateLimit() gin.HandlerFunc {
	return expenseIngestRateLimit(s.ingestLimiter, s.obsMetrics)
}

func expenseIngestRateLimit(limiter companyLimiter, metrics *obsmetrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		companyID, err := readExpenseIngestKey(c)
		if err != nil {
			logger.FromContext(ctx).Warn("expense ingest rate limit read body failed", zap.Error(err))
			AbortWithError(c, invalidRequestError())
			return
		}
		if companyID == "" {
			AbortWithError(c, expensedomain.ErrInvalidCompany)
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		result, err := limiter.AllowCompany(ctx, companyID)
		if err != nil {
			// the limiter protects capacity, not correctness; keep serving when redis is down
			logger.FromContext(ctx).Warn("expense ingest rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if result == nil || !result.Allowed {
			denyExpenseIngestRateLimit(c, endpoint, companyID, rateLimitReasonCompanyRate, result, metrics)
			return
		}

		metrics.RecordRateLimitAllowed(ctx, companyID, endpoint)
		c.Next()
	}
}

func denyExpenseIngestRateLimit(c *gin.Context, endpoint, companyID, reason string, result *ratelimit.RateLimitResult, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.WithReceipt(ctx, zap.L(), companyID, "").Warn("expense ingest rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	metrics.RecordRateLimitDenied(ctx, companyID, endpoint, reason)

	retryAfter := 1
	if result != nil && result.RetryAfter.Seconds() > 1 {
		retryAfter = int(result.RetryAfter.Seconds() + 0.999)
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func readExpenseIngestKey(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	var payload expenseIngestRateLimitKey
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}

	return strings.TrimSpace(payload.CompanyID), nil
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
