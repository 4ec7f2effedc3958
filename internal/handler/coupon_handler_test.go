package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/discount"
	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCouponHandler_CreateCoupon(t *testing.T) {
	logger := zerolog.Nop()

	storeID := uuid.New()
	created := &model.Coupon{
		ID:            uuid.New(),
		StoreID:       storeID,
		Name:          "lunch special",
		DiscountType:  discount.TypeFixed,
		DiscountValue: 2000,
		Status:        model.CouponDraft,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *model.Coupon
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name: "Success",
			requestBody: &model.CreateCouponInput{
				StoreID:       storeID,
				Name:          "lunch special",
				DiscountType:  discount.TypeFixed,
				DiscountValue: 2000,
				ValidFrom:     time.Now(),
				ValidUntil:    time.Now().AddDate(0, 1, 0),
			},
			mockReturn:     created,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid discount condition",
			requestBody:    &model.CreateCouponInput{StoreID: storeID, Name: "x"},
			mockError:      model.NewDomainError(model.ErrCodeInvalidCondition, "bogo requires a condition"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Unknown store",
			requestBody:    &model.CreateCouponInput{StoreID: uuid.New(), Name: "x"},
			mockError:      model.ErrStoreNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCouponService)
			h := NewCouponHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateCouponInput")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.CreateCoupon(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestCouponHandler_CheckAvailability(t *testing.T) {
	logger := zerolog.Nop()
	couponID := uuid.New()
	customerID := uuid.New()

	t.Run("passes customerId query through", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		mockService.On("CheckAvailability", mock.Anything, couponID, &customerID).
			Return(&availability.Result{Available: true}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/coupons/"+couponID.String()+"/availability?customerId="+customerID.String(), nil)
		req = withURLParams(req, map[string]string{"id": couponID.String()})
		w := httptest.NewRecorder()

		h.CheckAvailability(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var result availability.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Available)
		mockService.AssertExpectations(t)
	})

	t.Run("unavailable is still 200", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		mockService.On("CheckAvailability", mock.Anything, couponID, (*uuid.UUID)(nil)).
			Return(&availability.Result{
				Available:  false,
				ReasonCode: availability.ReasonNotActive,
				Reason:     "coupon is not active",
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/coupons/"+couponID.String()+"/availability", nil)
		req = withURLParams(req, map[string]string{"id": couponID.String()})
		w := httptest.NewRecorder()

		h.CheckAvailability(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed coupon id", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/coupons/not-a-uuid/availability", nil)
		req = withURLParams(req, map[string]string{"id": "not-a-uuid"})
		w := httptest.NewRecorder()

		h.CheckAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCouponHandler_SaveCoupon(t *testing.T) {
	logger := zerolog.Nop()
	customerID := uuid.New()
	couponID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		mockService.On("Save", mock.Anything, customerID, couponID).
			Return(&model.SavedCoupon{ID: uuid.New(), CouponID: couponID, CustomerID: customerID}, nil)

		body, _ := json.Marshal(map[string]string{"couponId": couponID.String()})
		req := httptest.NewRequest(http.MethodPost,
			"/api/customers/"+customerID.String()+"/saved-coupons", bytes.NewBuffer(body))
		req = withURLParams(req, map[string]string{"customerId": customerID.String()})
		w := httptest.NewRecorder()

		h.SaveCoupon(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing couponId", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost,
			"/api/customers/"+customerID.String()+"/saved-coupons", bytes.NewBufferString(`{}`))
		req = withURLParams(req, map[string]string{"customerId": customerID.String()})
		w := httptest.NewRecorder()

		h.SaveCoupon(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate claim maps to conflict", func(t *testing.T) {
		mockService := new(MockCouponService)
		h := NewCouponHandler(mockService, logger)

		mockService.On("Save", mock.Anything, customerID, couponID).
			Return(nil, model.ErrCouponAlreadySaved)

		body, _ := json.Marshal(map[string]string{"couponId": couponID.String()})
		req := httptest.NewRequest(http.MethodPost,
			"/api/customers/"+customerID.String()+"/saved-coupons", bytes.NewBuffer(body))
		req = withURLParams(req, map[string]string{"customerId": customerID.String()})
		w := httptest.NewRecorder()

		h.SaveCoupon(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeAlreadySaved, resp.Error)
	})
}
