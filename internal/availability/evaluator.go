package availability

import (
	"context"
	"fmt"
	"time"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReasonCode identifies why a coupon is not usable right now.
type ReasonCode string

// Availability failure reasons, in pipeline order.
const (
	ReasonNotActive         ReasonCode = "COUPON_NOT_ACTIVE"
	ReasonNotStartedYet     ReasonCode = "NOT_STARTED_YET"
	ReasonExpired           ReasonCode = "EXPIRED"
	ReasonNotAvailableToday ReasonCode = "NOT_AVAILABLE_TODAY"
	ReasonNotAvailableNow   ReasonCode = "NOT_AVAILABLE_NOW"
	ReasonBlackoutDate      ReasonCode = "BLACKOUT_DATE"
	ReasonSoldOut           ReasonCode = "SOLD_OUT"
	ReasonDailyLimit        ReasonCode = "DAILY_LIMIT_REACHED"
	ReasonUserLimit         ReasonCode = "USER_LIMIT_REACHED"
)

// Result is the outcome of an availability check. An unavailable
// coupon is an expected business outcome, not an error.
type Result struct {
	Available       bool       `json:"isAvailable"`
	ReasonCode      ReasonCode `json:"reasonCode,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	NextAvailableAt *time.Time `json:"nextAvailableAt,omitempty"`
}

// CountReader looks up redemption counts for the two quantity checks
// that need the data store. No other step reads anything.
type CountReader interface {
	// RedemptionCountOn counts redemptions of a coupon since local
	// midnight of day's calendar day.
	RedemptionCountOn(ctx context.Context, couponID uuid.UUID, day time.Time) (int, error)

	// CustomerRedemptionCount counts one customer's redemptions of a coupon.
	CustomerRedemptionCount(ctx context.Context, couponID, customerID uuid.UUID) (int, error)
}

// Evaluator decides whether a coupon may be used at a reference
// instant. Evaluation is a strict ordered pipeline; the first failing
// step is returned and later steps are never evaluated.
type Evaluator struct {
	counts CountReader
	now    func() time.Time
	logger zerolog.Logger
}

// NewEvaluator creates an evaluator using the wall clock.
func NewEvaluator(counts CountReader, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		counts: counts,
		now:    time.Now,
		logger: logger.With().Str("component", "availability").Logger(),
	}
}

// NewEvaluatorAt creates an evaluator with an injected clock.
func NewEvaluatorAt(counts CountReader, now func() time.Time, logger zerolog.Logger) *Evaluator {
	e := NewEvaluator(counts, logger)
	e.now = now
	return e
}

// Evaluate runs the pipeline at the evaluator's current clock time.
// customerID may be nil; the per-customer check is skipped without it.
func (e *Evaluator) Evaluate(ctx context.Context, coupon *model.Coupon, customerID *uuid.UUID) (*Result, error) {
	return e.EvaluateAt(ctx, coupon, customerID, e.now())
}

// EvaluateAt runs the pipeline at an explicit reference instant.
func (e *Evaluator) EvaluateAt(ctx context.Context, coupon *model.Coupon, customerID *uuid.UUID, now time.Time) (*Result, error) {
	// 1. Lifecycle status.
	if coupon.Status != model.CouponActive {
		return &Result{
			ReasonCode: ReasonNotActive,
			Reason:     "coupon is not currently active",
		}, nil
	}

	// 2. Validity window.
	if now.Before(coupon.ValidFrom) {
		from := coupon.ValidFrom
		return &Result{
			ReasonCode:      ReasonNotStartedYet,
			Reason:          "coupon validity period has not started",
			NextAvailableAt: &from,
		}, nil
	}
	if now.After(coupon.ValidUntil) {
		return &Result{
			ReasonCode: ReasonExpired,
			Reason:     "coupon has expired",
		}, nil
	}

	// 3. Allowed weekdays; empty means every day.
	if len(coupon.AvailableDays) > 0 && !containsDay(coupon.AvailableDays, int(now.Weekday())) {
		next := nextAvailableDay(coupon.AvailableDays, now)
		return &Result{
			ReasonCode:      ReasonNotAvailableToday,
			Reason:          "coupon is not available on this weekday",
			NextAvailableAt: &next,
		}, nil
	}

	// 4. Daily clock-time window. Inclusive string comparison on HH:mm;
	// an end before start never matches, there is no wraparound.
	if coupon.AvailableTimeStart != nil && coupon.AvailableTimeEnd != nil {
		currentTime := now.Format("15:04")
		if currentTime < *coupon.AvailableTimeStart || currentTime > *coupon.AvailableTimeEnd {
			next := nextAvailableTime(*coupon.AvailableTimeStart, now)
			return &Result{
				ReasonCode: ReasonNotAvailableNow,
				Reason: fmt.Sprintf("coupon is only available between %s and %s",
					*coupon.AvailableTimeStart, *coupon.AvailableTimeEnd),
				NextAvailableAt: &next,
			}, nil
		}
	}

	// 5. Blackout calendar dates, compared date-only.
	today := now.Format("2006-01-02")
	for _, d := range coupon.BlackoutDates {
		if d.Format("2006-01-02") == today {
			next := nextDayStart(now)
			return &Result{
				ReasonCode:      ReasonBlackoutDate,
				Reason:          "coupon cannot be used today",
				NextAvailableAt: &next,
			}, nil
		}
	}

	// 6. Total quantity cap; nil means unlimited.
	if coupon.TotalQuantity != nil && coupon.StatsRedeemed >= *coupon.TotalQuantity {
		return &Result{
			ReasonCode: ReasonSoldOut,
			Reason:     "coupon quantity is exhausted",
		}, nil
	}

	// 7. Daily cap. The only store read besides step 8; skipped
	// entirely when no cap is set.
	if coupon.DailyLimit != nil {
		todayCount, err := e.counts.RedemptionCountOn(ctx, coupon.ID, now)
		if err != nil {
			e.logger.Error().Err(err).Str("coupon_id", coupon.ID.String()).
				Msg("failed to count today's redemptions")
			return nil, fmt.Errorf("failed to count today's redemptions: %w", err)
		}
		if todayCount >= *coupon.DailyLimit {
			next := nextDayStart(now)
			return &Result{
				ReasonCode:      ReasonDailyLimit,
				Reason:          "coupon daily quantity is exhausted",
				NextAvailableAt: &next,
			}, nil
		}
	}

	// 8. Per-customer cap; 0 means unlimited. No lookup without both a
	// customer id and a positive cap.
	if customerID != nil && coupon.PerUserLimit > 0 {
		used, err := e.counts.CustomerRedemptionCount(ctx, coupon.ID, *customerID)
		if err != nil {
			e.logger.Error().Err(err).Str("coupon_id", coupon.ID.String()).
				Msg("failed to count customer redemptions")
			return nil, fmt.Errorf("failed to count customer redemptions: %w", err)
		}
		if used >= coupon.PerUserLimit {
			return &Result{
				ReasonCode: ReasonUserLimit,
				Reason:     "customer has reached the usage limit for this coupon",
			}, nil
		}
	}

	return &Result{Available: true}, nil
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// nextAvailableDay scans forward day by day (at most 7 iterations) for
// the next allowed weekday, at local midnight.
func nextAvailableDay(days []int, now time.Time) time.Time {
	current := now
	for i := 1; i <= 7; i++ {
		current = current.AddDate(0, 0, 1)
		if containsDay(days, int(current.Weekday())) {
			break
		}
	}
	return time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())
}

// nextAvailableTime is today's window start, or tomorrow's if the
// start has already passed.
func nextAvailableTime(start string, now time.Time) time.Time {
	var hour, minute int
	fmt.Sscanf(start, "%d:%d", &hour, &minute)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextDayStart(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
}
