package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

// ReportCacheRepository caches consolidated attendance reports in Redis.
// Entries are invalidated whenever a registration commits for the enrollment,
// so the cache never outlives the underlying facts.
type ReportCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewReportCacheRepository constructs the cache repository. A nil client
// disables caching without failing callers.
func NewReportCacheRepository(client *redis.Client, logger *zap.Logger) *ReportCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCacheRepository{client: client, logger: logger}
}

func reportKey(enrollmentID string) string {
	return "attendance:report:" + enrollmentID
}

// Get returns the cached report or ErrCacheMiss.
func (r *ReportCacheRepository) Get(ctx context.Context, enrollmentID string) (*models.AttendanceReport, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, reportKey(enrollmentID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get report %s: %w", enrollmentID, err)
	}
	var report models.AttendanceReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("unmarshal cached report %s: %w", enrollmentID, err)
	}
	return &report, nil
}

// Set stores the report with the given TTL.
func (r *ReportCacheRepository) Set(ctx context.Context, report *models.AttendanceReport, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.EnrollmentID, err)
	}
	if err := r.client.Set(ctx, reportKey(report.EnrollmentID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set report %s: %w", report.EnrollmentID, err)
	}
	return nil
}

// Invalidate drops cached reports for the given enrollments. Failures are
// logged but not propagated; the cache is only a projection of committed
// state.
func (r *ReportCacheRepository) Invalidate(ctx context.Context, enrollmentIDs []string) {
	if r.client == nil || len(enrollmentIDs) == 0 {
		return
	}
	keys := make([]string, len(enrollmentIDs))
	for i, id := range enrollmentIDs {
		keys[i] = reportKey(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
