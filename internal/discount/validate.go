package discount

import "fmt"

// ValidateCondition checks the structural shape of a condition at
// coupon-authoring time. It validates configuration only; whether an
// order satisfies the condition is the calculator's job.
func ValidateCondition(t Type, cond *Condition) error {
	switch t {
	case TypeBogo:
		if cond == nil || cond.Bogo == nil {
			return fmt.Errorf("bogo condition is required")
		}
		if cond.Bogo.BuyQuantity < 1 || cond.Bogo.GetQuantity < 1 {
			return fmt.Errorf("bogo buy and get quantities must be at least 1")
		}

	case TypeBundle:
		if cond == nil || cond.Bundle == nil {
			return fmt.Errorf("bundle condition is required")
		}
		if len(cond.Bundle.Items) < 2 {
			return fmt.Errorf("bundle requires at least 2 items")
		}
		if cond.Bundle.BundlePrice < 0 {
			return fmt.Errorf("bundle price must not be negative")
		}
		for i, item := range cond.Bundle.Items {
			if item.ItemID == "" {
				return fmt.Errorf("bundle item %d: item id is required", i)
			}
			if item.Quantity < 1 {
				return fmt.Errorf("bundle item %d: quantity must be at least 1", i)
			}
		}

	case TypeFreebie:
		if cond == nil || cond.Freebie == nil {
			return fmt.Errorf("freebie condition is required")
		}
		if cond.Freebie.FreebieItemID == "" {
			return fmt.Errorf("freebie item id is required")
		}
		if cond.Freebie.FreebieQuantity < 1 {
			return fmt.Errorf("freebie quantity must be at least 1")
		}

	case TypeConditional:
		if cond == nil || cond.Conditional == nil {
			return fmt.Errorf("conditional discount condition is required")
		}
		if len(cond.Conditional.Conditions) == 0 {
			return fmt.Errorf("at least one condition is required")
		}
		switch cond.Conditional.Discount.Type {
		case NestedFixed, NestedPercentage:
		default:
			return fmt.Errorf("nested discount type must be fixed or percentage")
		}
		for i, guard := range cond.Conditional.Conditions {
			switch guard.Type {
			case GuardMinAmount, GuardMinQuantity, GuardDayOfWeek, GuardFirstPurchase:
			case GuardTimeRange:
				if guard.TimeRange == nil {
					return fmt.Errorf("condition %d: time range is required", i)
				}
			default:
				return fmt.Errorf("condition %d: unknown condition type %q", i, guard.Type)
			}
		}
	}

	return nil
}
