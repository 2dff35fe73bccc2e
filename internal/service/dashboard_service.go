package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

const recentClaimsLimit = 5

// DashboardService produces per-role aggregated claim metrics. Results are
// cached in Redis per user and expire by TTL only.
type DashboardService interface {
	GetDashboard(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	claims   repository.ClaimRepository
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(claims repository.ClaimRepository, users repository.UserRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		claims:   claims,
		users:    users,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:user:%d", actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", actor.ID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	var response dto.DashboardResponse
	var err error

	if actor.Role == models.RoleLecturer {
		response, err = s.lecturerDashboard(ctx, actor.ID)
	} else {
		response, err = s.reviewerDashboard(ctx)
	}
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if setErr := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); setErr != nil {
				s.logger.Warn().Err(setErr).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) lecturerDashboard(ctx context.Context, lecturerID uint) (dto.DashboardResponse, error) {
	claims, err := s.claims.ListByLecturer(ctx, repository.ClaimListFilter{LecturerID: lecturerID, Sort: "newest"})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := buildCounts(claims)
	response.RecentClaims = dto.NewClaimResponseSlice(capClaims(claims, recentClaimsLimit))
	response.MonthlyTrend = monthlyTrend(claims, s.now())

	return response, nil
}

func (s *dashboardService) reviewerDashboard(ctx context.Context) (dto.DashboardResponse, error) {
	claims, err := s.claims.ListByDateRange(ctx, time.Time{}, s.now(), "")
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := buildCounts(claims)
	response.MonthlyTrend = monthlyTrend(claims, s.now())

	lecturers, err := s.users.CountByRole(ctx, models.RoleLecturer)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.TotalLecturers = int(lecturers)

	pending, err := s.claims.ListPending(ctx, "oldest")
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.RecentClaims = dto.NewClaimResponseSlice(capClaims(pending, recentClaimsLimit))

	return response, nil
}

func buildCounts(claims []models.Claim) dto.DashboardResponse {
	response := dto.DashboardResponse{ApprovedAmount: decimal.Zero}

	for _, claim := range claims {
		response.TotalClaims++
		switch claim.Status {
		case models.ClaimStatusPending:
			response.PendingClaims++
		case models.ClaimStatusApproved:
			response.ApprovedClaims++
			response.ApprovedAmount = response.ApprovedAmount.Add(claim.TotalAmount)
		case models.ClaimStatusRejected:
			response.RejectedClaims++
		}
	}

	return response
}

func monthlyTrend(claims []models.Claim, now time.Time) []dto.MonthlyTrend {
	cutoff := now.AddDate(0, -6, 0)
	buckets := map[string]*dto.MonthlyTrend{}

	for _, claim := range claims {
		if claim.ClaimDate.Before(cutoff) {
			continue
		}
		key := claim.ClaimDate.Format("2006-01")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &dto.MonthlyTrend{
				Month:          key,
				TotalAmount:    decimal.Zero,
				ApprovedAmount: decimal.Zero,
			}
			buckets[key] = bucket
		}
		bucket.ClaimsCount++
		bucket.TotalAmount = bucket.TotalAmount.Add(claim.TotalAmount)
		if claim.Status == models.ClaimStatusApproved {
			bucket.ApprovedAmount = bucket.ApprovedAmount.Add(claim.TotalAmount)
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	trend := make([]dto.MonthlyTrend, 0, len(keys))
	for _, key := range keys {
		trend = append(trend, *buckets[key])
	}
	return trend
}

func capClaims(claims []models.Claim, limit int) []models.Claim {
	if len(claims) <= limit {
		return claims
	}
	return claims[:limit]
}
