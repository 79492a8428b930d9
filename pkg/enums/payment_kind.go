package enums

import "fmt"

// PaymentKind distinguishes who is being paid.
type PaymentKind string

const (
	PaymentKindFarmer   PaymentKind = "farmer_payment"
	PaymentKindRetailer PaymentKind = "retailer_payment"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindFarmer,
	PaymentKindRetailer,
}

// String implements fmt.Stringer.
func (p PaymentKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentKind.
func (p PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentKind converts raw input into a PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
