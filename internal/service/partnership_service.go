package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// partnershipService implements PartnershipService.
type partnershipService struct {
	partnershipRepo repository.PartnershipRepository
	storeRepo       repository.StoreRepository
	logger          zerolog.Logger
}

// NewPartnershipService creates a new partnership service.
func NewPartnershipService(
	partnershipRepo repository.PartnershipRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) PartnershipService {
	return &partnershipService{
		partnershipRepo: partnershipRepo,
		storeRepo:       storeRepo,
		logger:          logger.With().Str("service", "partnership").Logger(),
	}
}

// Request creates a pending partnership between two stores. A store
// cannot partner with itself, and only one live edge may exist between
// two stores regardless of direction.
func (s *partnershipService) Request(ctx context.Context, input *model.PartnershipRequestInput) (*model.Partnership, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}
	if input.DistributorStoreID == input.ProviderStoreID {
		return nil, model.ErrSelfPartnership
	}
	if input.RequestedBy != input.DistributorStoreID && input.RequestedBy != input.ProviderStoreID {
		return nil, model.ErrNotPartnershipParty
	}

	for _, id := range []uuid.UUID{input.DistributorStoreID, input.ProviderStoreID} {
		store, err := s.storeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to request partnership: %w", err)
		}
		if store == nil {
			return nil, model.ErrStoreNotFound
		}
	}

	existing, err := s.partnershipRepo.FindBetween(ctx, input.DistributorStoreID, input.ProviderStoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to request partnership: %w", err)
	}
	if existing != nil {
		return nil, model.ErrPartnershipExists
	}

	commission := model.DefaultCommissionPerRedemption
	if input.CommissionPerRedemption != nil {
		commission = *input.CommissionPerRedemption
	}

	partnership := &model.Partnership{
		ID:                      uuid.New(),
		DistributorStoreID:      input.DistributorStoreID,
		ProviderStoreID:         input.ProviderStoreID,
		Status:                  model.PartnershipPending,
		CommissionPerRedemption: commission,
		RequestedBy:             input.RequestedBy,
		RequestedAt:             time.Now(),
	}

	if err := s.partnershipRepo.Create(ctx, partnership); err != nil {
		return nil, fmt.Errorf("failed to request partnership: %w", err)
	}

	s.logger.Info().
		Str("partnership_id", partnership.ID.String()).
		Str("distributor_store_id", partnership.DistributorStoreID.String()).
		Str("provider_store_id", partnership.ProviderStoreID.String()).
		Msg("partnership requested")

	return partnership, nil
}

// Respond answers a pending request. Only the side that did not make
// the request may answer; accepting activates the edge, declining
// terminates it.
func (s *partnershipService) Respond(ctx context.Context, id uuid.UUID, input *model.PartnershipRespondInput) (*model.Partnership, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	partnership, err := s.partnershipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to respond to partnership: %w", err)
	}
	if partnership == nil {
		return nil, model.ErrPartnershipNotFound
	}
	if partnership.Status != model.PartnershipPending {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, "partnership request has already been answered")
	}
	if input.StoreID != partnership.DistributorStoreID && input.StoreID != partnership.ProviderStoreID {
		return nil, model.ErrNotPartnershipParty
	}
	if input.StoreID == partnership.RequestedBy {
		return nil, model.ErrOwnRequest
	}

	now := time.Now()
	status := model.PartnershipActive
	var terminatedAt *time.Time
	if !input.Accept {
		status = model.PartnershipTerminated
		terminatedAt = &now
	}

	if err := s.partnershipRepo.UpdateStatus(ctx, id, status, &now, terminatedAt); err != nil {
		return nil, err
	}

	partnership.Status = status
	partnership.RespondedAt = &now
	partnership.TerminatedAt = terminatedAt

	s.logger.Info().
		Str("partnership_id", id.String()).
		Bool("accepted", input.Accept).
		Msg("partnership request answered")

	return partnership, nil
}

// ListByStore lists partnerships a store takes part in.
func (s *partnershipService) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error) {
	partnerships, err := s.partnershipRepo.ListByStore(ctx, storeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list partnerships: %w", err)
	}
	return partnerships, nil
}

// candidatePoolSize bounds the linear recommendation scan.
const candidatePoolSize = 200

// Recommend scores candidate partner stores for a store: active stores
// of a different category, excluding existing partners, ranked by a
// 100-point score of category fit and proximity.
func (s *partnershipService) Recommend(ctx context.Context, storeID uuid.UUID, limit int) ([]model.PartnerRecommendation, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend partners: %w", err)
	}
	if store == nil {
		return nil, model.ErrStoreNotFound
	}

	existing, err := s.partnershipRepo.ListByStore(ctx, storeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend partners: %w", err)
	}

	exclude := []uuid.UUID{storeID}
	for _, p := range existing {
		if p.Status == model.PartnershipTerminated {
			continue
		}
		if p.DistributorStoreID == storeID {
			exclude = append(exclude, p.ProviderStoreID)
		} else {
			exclude = append(exclude, p.DistributorStoreID)
		}
	}

	candidates, err := s.storeRepo.ListActiveExcluding(ctx, exclude, store.Category, candidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend partners: %w", err)
	}

	recommendations := make([]model.PartnerRecommendation, 0, len(candidates))
	for _, candidate := range candidates {
		dist := haversineMeters(store.Latitude, store.Longitude, candidate.Latitude, candidate.Longitude)
		recommendations = append(recommendations, model.PartnerRecommendation{
			Store:          candidate,
			DistanceMeters: dist,
			Score:          matchScore(store.Category, candidate.Category, dist),
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].DistanceMeters < recommendations[j].DistanceMeters
	})

	if limit <= 0 {
		limit = 5
	}
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	return recommendations, nil
}

// categoryTransitions scores how naturally customers flow from one
// store category to another after a meal.
var categoryTransitions = map[string]map[string]int{
	"korean":   {"cafe": 40, "dessert": 35, "snack": 25},
	"japanese": {"cafe": 40, "dessert": 35, "snack": 20},
	"chinese":  {"cafe": 35, "dessert": 30, "snack": 25},
	"western":  {"cafe": 40, "dessert": 40, "snack": 15},
	"chicken":  {"cafe": 25, "dessert": 25, "snack": 30},
	"snack":    {"cafe": 35, "dessert": 30, "korean": 20},
	"cafe":     {"dessert": 30, "snack": 25, "korean": 20},
	"dessert":  {"cafe": 30, "snack": 20, "korean": 20},
}

// matchScore rates a candidate partner out of 100: category transition
// (max 40), distance band (max 20), and flat placeholders for price
// tier and peak-hour complement (15 each) until those signals exist.
func matchScore(fromCategory, toCategory string, distanceMeters float64) int {
	score := 20
	if transitions, ok := categoryTransitions[fromCategory]; ok {
		if pts, ok := transitions[toCategory]; ok {
			score = pts
		}
	}

	switch {
	case distanceMeters <= 100:
		score += 20
	case distanceMeters <= 300:
		score += 15
	case distanceMeters <= 500:
		score += 10
	default:
		score += 5
	}

	score += 15 // price tier placeholder
	score += 15 // peak-hour placeholder

	return score
}

const earthRadiusMeters = 6371000

// haversineMeters is the great-circle distance between two coordinates.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
