package handler

import (
	"context"
	"net/http"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// withURLParams attaches chi route parameters to a request so handlers
// can be exercised without mounting a full router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockCouponService is a mock implementation of service.CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Create(ctx context.Context, input *model.CreateCouponInput) (*model.Coupon, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error) {
	args := m.Called(ctx, storeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockCouponService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) (*model.Coupon, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) CheckAvailability(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (*availability.Result, error) {
	args := m.Called(ctx, id, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Result), args.Error(1)
}

func (m *MockCouponService) Save(ctx context.Context, customerID, couponID uuid.UUID) (*model.SavedCoupon, error) {
	args := m.Called(ctx, customerID, couponID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedCoupon), args.Error(1)
}

func (m *MockCouponService) ListSaved(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SavedCoupon), args.Error(1)
}

// MockRedemptionService is a mock implementation of service.RedemptionService.
type MockRedemptionService struct {
	mock.Mock
}

func (m *MockRedemptionService) Redeem(ctx context.Context, storeID uuid.UUID, input *model.RedemptionInput) (*model.RedemptionResult, error) {
	args := m.Called(ctx, storeID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RedemptionResult), args.Error(1)
}

func (m *MockRedemptionService) History(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Redemption), args.Int(1), args.Error(2)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, distributorStoreID uuid.UUID, input *model.IssueTokenInput) (*model.IssueTokenResult, error) {
	args := m.Called(ctx, distributorStoreID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssueTokenResult), args.Error(1)
}

func (m *MockTokenService) Options(ctx context.Context, code string) (*model.TokenOptions, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenOptions), args.Error(1)
}

func (m *MockTokenService) Select(ctx context.Context, code string, input *model.SelectCrossCouponInput) (*model.MealToken, error) {
	args := m.Called(ctx, code, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MealToken), args.Error(1)
}

func (m *MockTokenService) Redeem(ctx context.Context, code string, providerStoreID uuid.UUID, input *model.RedeemTokenInput) (*model.TokenRedemptionResult, error) {
	args := m.Called(ctx, code, providerStoreID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenRedemptionResult), args.Error(1)
}

func (m *MockTokenService) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error) {
	args := m.Called(ctx, customerID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.MealToken), args.Int(1), args.Error(2)
}

func (m *MockTokenService) ExpireOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPartnershipService is a mock implementation of service.PartnershipService.
type MockPartnershipService struct {
	mock.Mock
}

func (m *MockPartnershipService) Request(ctx context.Context, input *model.PartnershipRequestInput) (*model.Partnership, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Partnership), args.Error(1)
}

func (m *MockPartnershipService) Respond(ctx context.Context, id uuid.UUID, input *model.PartnershipRespondInput) (*model.Partnership, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Partnership), args.Error(1)
}

func (m *MockPartnershipService) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error) {
	args := m.Called(ctx, storeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Partnership), args.Error(1)
}

func (m *MockPartnershipService) Recommend(ctx context.Context, storeID uuid.UUID, limit int) ([]model.PartnerRecommendation, error) {
	args := m.Called(ctx, storeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PartnerRecommendation), args.Error(1)
}

// MockCrossCouponService is a mock implementation of service.CrossCouponService.
type MockCrossCouponService struct {
	mock.Mock
}

func (m *MockCrossCouponService) Create(ctx context.Context, input *model.CrossCouponInput) (*model.CrossCoupon, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCoupon), args.Error(1)
}

func (m *MockCrossCouponService) Update(ctx context.Context, id uuid.UUID, input *model.CrossCouponUpdateInput) (*model.CrossCoupon, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCoupon), args.Error(1)
}

func (m *MockCrossCouponService) Deactivate(ctx context.Context, id, storeID uuid.UUID) error {
	args := m.Called(ctx, id, storeID)
	return args.Error(0)
}

func (m *MockCrossCouponService) ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error) {
	args := m.Called(ctx, partnershipID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CrossCoupon), args.Error(1)
}

// MockSettlementService is a mock implementation of service.SettlementService.
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetOrCreate(ctx context.Context, partnershipID uuid.UUID, year int, month time.Month) (*model.CrossCouponSettlement, []model.SettlementDetail, error) {
	args := m.Called(ctx, partnershipID, year, month)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.CrossCouponSettlement), args.Get(1).([]model.SettlementDetail), args.Error(2)
}

func (m *MockSettlementService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus) (*model.CrossCouponSettlement, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCouponSettlement), args.Error(1)
}

func (m *MockSettlementService) RunMonthly(ctx context.Context, year int, month time.Month) ([]model.PartnershipSettlementResult, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PartnershipSettlementResult), args.Error(1)
}
