package service

import (
	"context"
	"time"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error) {
	args := m.Called(ctx, storeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementIssued(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockSavedCouponRepository is a mock implementation of SavedCouponRepository.
type MockSavedCouponRepository struct {
	mock.Mock
}

func (m *MockSavedCouponRepository) Create(ctx context.Context, saved *model.SavedCoupon) error {
	args := m.Called(ctx, saved)
	return args.Error(0)
}

func (m *MockSavedCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SavedCoupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedCoupon), args.Error(1)
}

func (m *MockSavedCouponRepository) FindActive(ctx context.Context, couponID, customerID uuid.UUID) (*model.SavedCoupon, error) {
	args := m.Called(ctx, couponID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedCoupon), args.Error(1)
}

func (m *MockSavedCouponRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SavedCoupon), args.Error(1)
}

func (m *MockSavedCouponRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time, redemptionID uuid.UUID) error {
	args := m.Called(ctx, tx, id, usedAt, redemptionID)
	return args.Error(0)
}

// MockRedemptionRepository is a mock implementation of RedemptionRepository.
// Its count methods double as the availability CountReader.
type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRedemptionRepository) Create(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error {
	args := m.Called(ctx, tx, redemption)
	return args.Error(0)
}

func (m *MockRedemptionRepository) RedemptionCountOn(ctx context.Context, couponID uuid.UUID, day time.Time) (int, error) {
	args := m.Called(ctx, couponID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockRedemptionRepository) CustomerRedemptionCount(ctx context.Context, couponID, customerID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRedemptionRepository) UpsertDailyStats(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, day time.Time, discountAmount int64) error {
	args := m.Called(ctx, tx, couponID, day, discountAmount)
	return args.Error(0)
}

func (m *MockRedemptionRepository) ListByStore(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Redemption), args.Int(1), args.Error(2)
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) IncrementCouponStats(ctx context.Context, tx pgx.Tx, id uuid.UUID, savedAmount int64) error {
	args := m.Called(ctx, tx, id, savedAmount)
	return args.Error(0)
}

// MockStoreRepository is a mock implementation of StoreRepository.
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreRepository) ListActiveExcluding(ctx context.Context, excludeIDs []uuid.UUID, excludeCategory string, limit int) ([]model.Store, error) {
	args := m.Called(ctx, excludeIDs, excludeCategory, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Store), args.Error(1)
}

// MockPartnershipRepository is a mock implementation of PartnershipRepository.
type MockPartnershipRepository struct {
	mock.Mock
}

func (m *MockPartnershipRepository) Create(ctx context.Context, partnership *model.Partnership) error {
	args := m.Called(ctx, partnership)
	return args.Error(0)
}

func (m *MockPartnershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Partnership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Partnership), args.Error(1)
}

func (m *MockPartnershipRepository) FindBetween(ctx context.Context, storeA, storeB uuid.UUID) (*model.Partnership, error) {
	args := m.Called(ctx, storeA, storeB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Partnership), args.Error(1)
}

func (m *MockPartnershipRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error) {
	args := m.Called(ctx, storeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Partnership), args.Error(1)
}

func (m *MockPartnershipRepository) ListActive(ctx context.Context) ([]model.Partnership, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Partnership), args.Error(1)
}

func (m *MockPartnershipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PartnershipStatus, respondedAt, terminatedAt *time.Time) error {
	args := m.Called(ctx, id, status, respondedAt, terminatedAt)
	return args.Error(0)
}

// MockCrossCouponRepository is a mock implementation of CrossCouponRepository.
type MockCrossCouponRepository struct {
	mock.Mock
}

func (m *MockCrossCouponRepository) Create(ctx context.Context, coupon *model.CrossCoupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCrossCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCoupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCoupon), args.Error(1)
}

func (m *MockCrossCouponRepository) Update(ctx context.Context, coupon *model.CrossCoupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCrossCouponRepository) ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error) {
	args := m.Called(ctx, partnershipID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CrossCoupon), args.Error(1)
}

func (m *MockCrossCouponRepository) CountSelectionsSince(ctx context.Context, tx pgx.Tx, crossCouponID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, tx, crossCouponID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockCrossCouponRepository) IncrementSelected(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockCrossCouponRepository) IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) Create(ctx context.Context, token *model.MealToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByCode(ctx context.Context, code string) (*model.MealToken, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MealToken), args.Error(1)
}

func (m *MockTokenRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.MealToken, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MealToken), args.Error(1)
}

func (m *MockTokenRepository) MarkSelected(ctx context.Context, tx pgx.Tx, id, crossCouponID uuid.UUID, customerID *uuid.UUID, selectedAt time.Time) error {
	args := m.Called(ctx, tx, id, crossCouponID, customerID, selectedAt)
	return args.Error(0)
}

func (m *MockTokenRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID, redeemedAt time.Time) error {
	args := m.Called(ctx, tx, id, redeemedAt)
	return args.Error(0)
}

func (m *MockTokenRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error) {
	args := m.Called(ctx, customerID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.MealToken), args.Int(1), args.Error(2)
}

func (m *MockTokenRepository) ListRedeemedInPeriod(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) ([]model.MealToken, error) {
	args := m.Called(ctx, partnershipID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MealToken), args.Error(1)
}

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Create(ctx context.Context, settlement *model.CrossCouponSettlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCouponSettlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCouponSettlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByPeriod(ctx context.Context, partnershipID uuid.UUID, periodStart time.Time) (*model.CrossCouponSettlement, error) {
	args := m.Called(ctx, partnershipID, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrossCouponSettlement), args.Error(1)
}

func (m *MockSettlementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus, paidAt *time.Time) error {
	args := m.Called(ctx, id, status, paidAt)
	return args.Error(0)
}
