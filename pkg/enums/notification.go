package enums

// NotificationKind classifies the workflow event a notification was emitted for.
type NotificationKind string

const (
	NotificationKindJoinRequested         NotificationKind = "join_requested"
	NotificationKindJoinPending           NotificationKind = "join_pending"
	NotificationKindMembershipApproved    NotificationKind = "membership_approved"
	NotificationKindMembershipRejected    NotificationKind = "membership_rejected"
	NotificationKindContributionSubmitted NotificationKind = "contribution_submitted"
	NotificationKindContributionAdded     NotificationKind = "contribution_added"
	NotificationKindContributionApproved  NotificationKind = "contribution_approved"
	NotificationKindContributionRejected  NotificationKind = "contribution_rejected"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindJoinRequested,
	NotificationKindJoinPending,
	NotificationKindMembershipApproved,
	NotificationKindMembershipRejected,
	NotificationKindContributionSubmitted,
	NotificationKindContributionAdded,
	NotificationKindContributionApproved,
	NotificationKindContributionRejected,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}
