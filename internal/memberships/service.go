package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
)

type membershipRepository interface {
	FindMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error)
	CreateMembership(ctx context.Context, groupID, userID uuid.UUID, status enums.MembershipStatus) (*models.GroupMember, error)
	TransitionStatus(ctx context.Context, groupID, userID uuid.UUID, from []enums.MembershipStatus, next enums.MembershipStatus, now time.Time) (bool, error)
	IsActive(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID, statuses ...enums.MembershipStatus) ([]MemberDTO, error)
}

type groupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Group, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message notifications.Message) error
}

// Service runs the join-request workflow of a group.
type Service interface {
	RequestJoin(ctx context.Context, groupID, userID uuid.UUID) (*MembershipDTO, error)
	RequestJoinByCode(ctx context.Context, inviteCode string, userID uuid.UUID) (*MembershipDTO, error)
	Approve(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*MembershipDTO, error)
	Reject(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*MembershipDTO, error)
	IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListRequests(ctx context.Context, groupID, actingUserID uuid.UUID) ([]MemberDTO, error)
	ListActiveMembers(ctx context.Context, groupID, actingUserID uuid.UUID) ([]MemberDTO, error)
}

// ServiceParams wires the membership service.
type ServiceParams struct {
	Repo     membershipRepository
	Groups   groupRepository
	Users    userRepository
	Notifier notifier
	Logger   *logger.Logger
	Metrics  *metrics.Workflow
	Clock    func() time.Time
}

type service struct {
	repo     membershipRepository
	groups   groupRepository
	users    userRepository
	notifier notifier
	logg     *logger.Logger
	metrics  *metrics.Workflow
	now      func() time.Time
}

// NewService builds a membership service with the provided collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if params.Groups == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "groups repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		groups:   params.Groups,
		users:    params.Users,
		notifier: params.Notifier,
		logg:     logg,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

func (s *service) RequestJoin(ctx context.Context, groupID, userID uuid.UUID) (*MembershipDTO, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.requestJoin(ctx, group, userID)
}

func (s *service) RequestJoinByCode(ctx context.Context, inviteCode string, userID uuid.UUID) (*MembershipDTO, error) {
	if inviteCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}
	group, err := s.groups.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group by invite code")
	}
	if group == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid invite code")
	}
	return s.requestJoin(ctx, group, userID)
}

func (s *service) requestJoin(ctx context.Context, group *models.Group, userID uuid.UUID) (*MembershipDTO, error) {
	existing, err := s.repo.FindMembership(ctx, group.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
	}
	if existing != nil {
		return nil, alreadyMember(existing.Status)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	membership, err := s.repo.CreateMembership(ctx, group.ID, userID, enums.MembershipStatusPending)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, s.raceLoser(ctx, group.ID, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
	}
	s.metrics.Transition("membership", string(enums.MembershipStatusPending))

	s.notify(ctx, group.CreatedBy, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindJoinRequested,
		Text:    fmt.Sprintf("%s wants to join %q", user.Username, group.Name),
	})
	s.notify(ctx, userID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindJoinPending,
		Text:    fmt.Sprintf("your request to join %q is awaiting approval", group.Name),
	})
	return ToDTO(membership), nil
}

// raceLoser explains a unique violation on insert using the row that won.
func (s *service) raceLoser(ctx context.Context, groupID, userID uuid.UUID) error {
	existing, err := s.repo.FindMembership(ctx, groupID, userID)
	if err != nil || existing == nil {
		return alreadyMember(enums.MembershipStatusPending)
	}
	return alreadyMember(existing.Status)
}

func alreadyMember(status enums.MembershipStatus) error {
	switch status {
	case enums.MembershipStatusActive:
		return pkgerrors.New(pkgerrors.CodeAlreadyMember, "you are already an active member of this group")
	case enums.MembershipStatusRejected:
		return pkgerrors.New(pkgerrors.CodeAlreadyMember, "your request was refused")
	default:
		return pkgerrors.New(pkgerrors.CodeAlreadyMember, "your request is awaiting approval")
	}
}

func (s *service) Approve(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*MembershipDTO, error) {
	group, err := s.loadAdminGroup(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}

	from := []enums.MembershipStatus{enums.MembershipStatusPending, enums.MembershipStatusRejected}
	membership, err := s.transition(ctx, group, userID, from, enums.MembershipStatusActive)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindMembershipApproved,
		Text:    fmt.Sprintf("your request to join %q has been approved", group.Name),
	})
	return membership, nil
}

func (s *service) Reject(ctx context.Context, groupID, userID, actingUserID uuid.UUID) (*MembershipDTO, error) {
	group, err := s.loadAdminGroup(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}

	from := []enums.MembershipStatus{enums.MembershipStatusPending}
	membership, err := s.transition(ctx, group, userID, from, enums.MembershipStatusRejected)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindMembershipRejected,
		Text:    fmt.Sprintf("your request to join %q was refused", group.Name),
	})
	return membership, nil
}

func (s *service) transition(ctx context.Context, group *models.Group, userID uuid.UUID, from []enums.MembershipStatus, next enums.MembershipStatus) (*MembershipDTO, error) {
	changed, err := s.repo.TransitionStatus(ctx, group.ID, userID, from, next, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update membership status")
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no %s request found for this user", joinStatuses(from)))
	}
	s.metrics.Transition("membership", string(next))
	logCtx := s.logg.WithGroupID(ctx, group.ID.String())
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"user_id": userID.String(),
		"status":  string(next),
	}), "membership status changed")

	membership, err := s.repo.FindMembership(ctx, group.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload membership")
	}
	return ToDTO(membership), nil
}

func joinStatuses(statuses []enums.MembershipStatus) string {
	out := ""
	for i, status := range statuses {
		if i > 0 {
			out += " or "
		}
		out += string(status)
	}
	return out
}

func (s *service) IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	ok, err := s.repo.IsActive(ctx, groupID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check membership")
	}
	return ok, nil
}

func (s *service) ListRequests(ctx context.Context, groupID, actingUserID uuid.UUID) ([]MemberDTO, error) {
	if _, err := s.loadAdminGroup(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID, enums.MembershipStatusPending, enums.MembershipStatusRejected)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list join requests")
	}
	return members, nil
}

func (s *service) ListActiveMembers(ctx context.Context, groupID, actingUserID uuid.UUID) ([]MemberDTO, error) {
	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	ok, err := s.IsActiveMember(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotActiveMember, "you are not an active member of this group")
	}
	members, err := s.repo.ListMembers(ctx, groupID, enums.MembershipStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
	}
	return members, nil
}

func (s *service) loadGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group")
	}
	if group == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	return group, nil
}

func (s *service) loadAdminGroup(ctx context.Context, groupID, actingUserID uuid.UUID) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actingUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the group admin can perform this action")
	}
	return group, nil
}

// notify never fails the caller; a lost notification is logged and counted upstream.
func (s *service) notify(ctx context.Context, userID uuid.UUID, message notifications.Message) {
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"recipient_id": userID.String(),
			"kind":         string(message.Kind),
			"error":        err.Error(),
		}), "notification dropped")
	}
}
