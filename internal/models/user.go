package models

// Role is the capability level attached to a user account and to every
// authenticated token. The core trusts the role on the token; it never
// checks credentials itself.
type Role string

const (
	// RoleOwner has elevated write access: item and user management,
	// owner reports, sales on behalf of a buyer.
	RoleOwner Role = "owner"

	// RoleBuyer may browse available items and purchase them.
	RoleBuyer Role = "buyer"

	// RoleAssignedUser is a buyer-role account identified by an
	// owner-issued ID. It can purchase and view its own portal.
	RoleAssignedUser Role = "assigned"
)

// CanPurchase reports whether the role is allowed to be the buying party
// of a transaction.
func (r Role) CanPurchase() bool {
	return r == RoleBuyer || r == RoleAssignedUser
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleBuyer, RoleAssignedUser:
		return true
	}
	return false
}

// User represents an owner-registered account: a seller, a buyer, or both.
type User struct {
	// ID is the unique identifier assigned by the owner (UUID format).
	ID string

	// Role is the account's capability level.
	Role Role

	// DisplayName is the user's name as shown on dashboards and receipts.
	DisplayName string

	// Phone is the user's contact number.
	Phone string

	// BalanceCents is the running sum of this user's purchases as buyer.
	// Mutated only by the transaction engine at commit time.
	BalanceCents int64

	// PayoutCents is the seller income accrued from sold consignments.
	// Mutated only by the transaction engine at commit time.
	PayoutCents int64

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
