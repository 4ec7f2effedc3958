package router

import (
	"net/http"

	"coupon-day/internal/handler"
	"coupon-day/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Coupon      *handler.CouponHandler
	Discount    *handler.DiscountHandler
	Redemption  *handler.RedemptionHandler
	Token       *handler.TokenHandler
	Partnership *handler.PartnershipHandler
	CrossCoupon *handler.CrossCouponHandler
	Settlement  *handler.SettlementHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", h.Coupon.CreateCoupon)
			r.Get("/{id}", h.Coupon.GetCoupon)
			r.Patch("/{id}/status", h.Coupon.UpdateCouponStatus)
			r.Get("/{id}/availability", h.Coupon.CheckAvailability)
		})

		r.Post("/discounts/calculate", h.Discount.Calculate)

		r.Route("/stores/{storeId}", func(r chi.Router) {
			r.Get("/coupons", h.Coupon.ListStoreCoupons)
			r.Post("/redemptions", h.Redemption.Redeem)
			r.Get("/redemptions", h.Redemption.History)
			r.Post("/tokens", h.Token.IssueToken)
			r.Post("/tokens/{code}/redeem", h.Token.RedeemToken)
			r.Get("/partnerships", h.Partnership.ListStorePartnerships)
			r.Get("/partner-recommendations", h.Partnership.RecommendPartners)
		})

		r.Route("/customers/{customerId}", func(r chi.Router) {
			r.Post("/saved-coupons", h.Coupon.SaveCoupon)
			r.Get("/saved-coupons", h.Coupon.ListSavedCoupons)
			r.Get("/tokens", h.Token.ListCustomerTokens)
		})

		r.Route("/tokens/{code}", func(r chi.Router) {
			r.Get("/options", h.Token.TokenOptions)
			r.Post("/select", h.Token.SelectCrossCoupon)
		})

		r.Route("/partnerships", func(r chi.Router) {
			r.Post("/", h.Partnership.RequestPartnership)
			r.Post("/{id}/respond", h.Partnership.RespondToPartnership)
			r.Get("/{id}/cross-coupons", h.CrossCoupon.ListPartnershipCrossCoupons)
			r.Get("/{id}/settlements/{year}/{month}", h.Settlement.GetSettlement)
		})

		r.Route("/cross-coupons", func(r chi.Router) {
			r.Post("/", h.CrossCoupon.CreateCrossCoupon)
			r.Patch("/{id}", h.CrossCoupon.UpdateCrossCoupon)
			r.Delete("/{id}", h.CrossCoupon.DeactivateCrossCoupon)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Patch("/{id}/status", h.Settlement.UpdateSettlementStatus)
			r.Post("/run/{year}/{month}", h.Settlement.RunSettlements)
		})
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var wrapped http.Handler = r
	wrapped = middleware.APIKeyAuth(apiKey, logger)(wrapped)
	wrapped = middleware.CORS(wrapped)
	wrapped = middleware.Logging(logger)(wrapped)
	wrapped = middleware.Recovery(logger)(wrapped)

	return wrapped
}
