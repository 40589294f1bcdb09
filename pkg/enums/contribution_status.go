package enums

// ContributionStatus tracks admin review of a contribution.
type ContributionStatus string

const (
	ContributionStatusPending  ContributionStatus = "pending"
	ContributionStatusApproved ContributionStatus = "approved"
	ContributionStatusRejected ContributionStatus = "rejected"
)

var validContributionStatuses = []ContributionStatus{
	ContributionStatusPending,
	ContributionStatusApproved,
	ContributionStatusRejected,
}

func (c ContributionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known ContributionStatus.
func (c ContributionStatus) IsValid() bool {
	for _, candidate := range validContributionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further review is possible.
func (c ContributionStatus) IsTerminal() bool {
	return c == ContributionStatusApproved || c == ContributionStatusRejected
}

// InitialContributionStatus returns the status a new contribution starts in:
// proof of payment forces review, otherwise it is accepted immediately.
func InitialContributionStatus(hasProof bool) ContributionStatus {
	if hasProof {
		return ContributionStatusPending
	}
	return ContributionStatusApproved
}
