package enums

import "fmt"

// DispatchStatus tracks the lifecycle of an aggregator-to-retailer dispatch.
type DispatchStatus string

const (
	DispatchStatusPending   DispatchStatus = "pending"
	DispatchStatusCompleted DispatchStatus = "completed"
	DispatchStatusRejected  DispatchStatus = "rejected"
)

var validDispatchStatuses = []DispatchStatus{
	DispatchStatusPending,
	DispatchStatusCompleted,
	DispatchStatusRejected,
}

// String implements fmt.Stringer.
func (s DispatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DispatchStatus.
func (s DispatchStatus) IsValid() bool {
	for _, candidate := range validDispatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDispatchStatus converts raw input into a DispatchStatus.
func ParseDispatchStatus(value string) (DispatchStatus, error) {
	for _, candidate := range validDispatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch status %q", value)
}
