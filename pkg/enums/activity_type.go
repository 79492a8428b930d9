package enums

import "fmt"

// ActivityType labels an audit trail entry.
type ActivityType string

const (
	ActivityProcurementCreated ActivityType = "procurement_created"
	ActivityProcurementUpdated ActivityType = "procurement_updated"
	ActivityProcurementDeleted ActivityType = "procurement_deleted"
	ActivitySaleCreated        ActivityType = "sale_created"
	ActivitySaleUpdated        ActivityType = "sale_updated"
	ActivitySaleStatusChanged  ActivityType = "sale_status_changed"
	ActivityDispatchCreated    ActivityType = "dispatch_created"
	ActivityDispatchStatus     ActivityType = "dispatch_status_changed"
	ActivityStockAdjusted      ActivityType = "stock_adjusted"
	ActivityPaymentRecorded    ActivityType = "payment_recorded"
)

var validActivityTypes = []ActivityType{
	ActivityProcurementCreated,
	ActivityProcurementUpdated,
	ActivityProcurementDeleted,
	ActivitySaleCreated,
	ActivitySaleUpdated,
	ActivitySaleStatusChanged,
	ActivityDispatchCreated,
	ActivityDispatchStatus,
	ActivityStockAdjusted,
	ActivityPaymentRecorded,
}

// String implements fmt.Stringer.
func (a ActivityType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityType.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
