package enums

import "fmt"

// Role identifies the tier of the supply chain a user acts for.
type Role string

const (
	RoleCooperative Role = "cooperative"
	RoleAggregator  Role = "aggregator"
	RoleRetailer    Role = "retailer"
	RoleAdmin       Role = "admin"
)

var validRoles = []Role{
	RoleCooperative,
	RoleAggregator,
	RoleRetailer,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
