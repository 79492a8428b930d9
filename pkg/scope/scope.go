package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/auth"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
)

// Scope captures what slice of the network a caller may see and touch.
// It is derived once from JWT claims and threaded through every repository call.
type Scope struct {
	UserID        uuid.UUID
	Role          enums.Role
	CooperativeID *uuid.UUID
	RetailerID    *uuid.UUID
}

// FromClaims derives a Scope from parsed access token claims.
func FromClaims(claims *auth.AccessTokenClaims) (Scope, error) {
	if claims == nil {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing claims")
	}
	if !claims.Role.IsValid() {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown role")
	}
	if claims.Role == enums.RoleCooperative && claims.CooperativeID == nil {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "cooperative scope missing")
	}
	if claims.Role == enums.RoleRetailer && claims.RetailerID == nil {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "retailer scope missing")
	}
	return Scope{
		UserID:        claims.UserID,
		Role:          claims.Role,
		CooperativeID: claims.CooperativeID,
		RetailerID:    claims.RetailerID,
	}, nil
}

// SeesAllCooperatives reports whether the caller reads across the whole network.
func (s Scope) SeesAllCooperatives() bool {
	return s.Role == enums.RoleAggregator || s.Role == enums.RoleAdmin
}

// CooperativeQuery narrows a query to the rows the caller may read.
// Aggregator and admin callers see everything. Cooperative callers see
// only their own rows. Retailer callers see nothing via this filter.
func (s Scope) CooperativeQuery(q *gorm.DB, column string) *gorm.DB {
	if s.SeesAllCooperatives() {
		return q
	}
	if s.Role == enums.RoleCooperative && s.CooperativeID != nil {
		return q.Where(column+" = ?", *s.CooperativeID)
	}
	return q.Where("1 = 0")
}

// RetailerQuery narrows a query for retailer callers to their own rows.
func (s Scope) RetailerQuery(q *gorm.DB, column string) *gorm.DB {
	if s.SeesAllCooperatives() {
		return q
	}
	if s.Role == enums.RoleRetailer && s.RetailerID != nil {
		return q.Where(column+" = ?", *s.RetailerID)
	}
	if s.Role == enums.RoleCooperative {
		return q
	}
	return q.Where("1 = 0")
}

// EnsureCooperativeWrite checks the caller may mutate data owned by the given cooperative.
func (s Scope) EnsureCooperativeWrite(cooperativeID uuid.UUID) error {
	switch s.Role {
	case enums.RoleAdmin, enums.RoleAggregator:
		return nil
	case enums.RoleCooperative:
		if s.CooperativeID != nil && *s.CooperativeID == cooperativeID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "cooperative mismatch")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot modify cooperative data")
	}
}

// EnsureCooperativeRead checks the caller may read data owned by the given cooperative.
func (s Scope) EnsureCooperativeRead(cooperativeID uuid.UUID) error {
	if s.SeesAllCooperatives() {
		return nil
	}
	if s.Role == enums.RoleCooperative && s.CooperativeID != nil && *s.CooperativeID == cooperativeID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "cooperative data not visible to caller")
}

// EnsureAggregator restricts an operation to aggregator or admin users.
func (s Scope) EnsureAggregator() error {
	if s.Role == enums.RoleAggregator || s.Role == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "aggregator role required")
}

// EnsureAdmin restricts an operation to admin users.
func (s Scope) EnsureAdmin() error {
	if s.Role == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
}
