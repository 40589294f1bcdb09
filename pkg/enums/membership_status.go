package enums

// MembershipStatus captures the lifecycle of a user's membership in a group.
type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusRejected MembershipStatus = "rejected"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusPending,
	MembershipStatusActive,
	MembershipStatusRejected,
}

// String implements fmt.Stringer.
func (m MembershipStatus) String() string {
	return string(m)
}

// IsValid reports whether the value matches a known MembershipStatus.
func (m MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the admin may move a membership from m to next.
// Re-approving a rejected request is allowed; active is terminal.
func (m MembershipStatus) CanTransitionTo(next MembershipStatus) bool {
	switch next {
	case MembershipStatusActive:
		return m == MembershipStatusPending || m == MembershipStatusRejected
	case MembershipStatusRejected:
		return m == MembershipStatusPending
	default:
		return false
	}
}
