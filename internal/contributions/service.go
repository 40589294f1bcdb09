package contributions

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
)

// RecentLimit caps the dashboard's recent contribution feed.
const RecentLimit = 10

type contributionRepository interface {
	Create(ctx context.Context, contribution *models.Contribution) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contribution, error)
	Review(ctx context.Context, groupID, id uuid.UUID, next enums.ContributionStatus, reviewer uuid.UUID, now time.Time) (bool, error)
	ApprovedAmounts(ctx context.Context, groupID uuid.UUID) ([]decimal.Decimal, error)
	ListByStatus(ctx context.Context, groupID uuid.UUID, status enums.ContributionStatus) ([]ContributionDTO, error)
	RecentApprovedForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ContributionDTO, error)
}

type groupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
}

type memberDirectory interface {
	IsActive(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ActiveMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message notifications.Message) error
	NotifyMany(ctx context.Context, userIDs []uuid.UUID, message notifications.Message) error
}

// Service runs the contribution review workflow.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*ContributionDTO, error)
	Approve(ctx context.Context, groupID, contributionID, actingUserID uuid.UUID) (*ContributionDTO, error)
	Reject(ctx context.Context, groupID, contributionID, actingUserID uuid.UUID) (*ContributionDTO, error)
	TotalApproved(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)
	ListApproved(ctx context.Context, groupID, userID uuid.UUID) ([]ContributionDTO, error)
	ListPending(ctx context.Context, groupID, actingUserID uuid.UUID) ([]ContributionDTO, error)
	RecentForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ContributionDTO, error)
}

// ServiceParams wires the contribution service.
type ServiceParams struct {
	Repo     contributionRepository
	Groups   groupRepository
	Members  memberDirectory
	Users    userRepository
	Notifier notifier
	Logger   *logger.Logger
	Metrics  *metrics.Workflow
	Clock    func() time.Time
}

type service struct {
	repo     contributionRepository
	groups   groupRepository
	members  memberDirectory
	users    userRepository
	notifier notifier
	logg     *logger.Logger
	metrics  *metrics.Workflow
	now      func() time.Time
}

// NewService builds a contribution service with the provided collaborators.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "contributions repository required")
	case params.Groups == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "groups repository required")
	case params.Members == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "member directory required")
	case params.Users == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	case params.Notifier == nil:
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
		members:  params.Members,
		users:    params.Users,
		notifier: params.Notifier,
		logg:     logg,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*ContributionDTO, error) {
	// stored at cent precision; a sub-cent amount would persist as zero
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	group, err := s.loadGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, group.ID, input.UserID); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	proof := normalizeProof(input.ProofRef)
	contribution := &models.Contribution{
		GroupID:          group.ID,
		UserID:           input.UserID,
		Amount:           amount,
		Description:      strings.TrimSpace(input.Description),
		ProofRef:         proof,
		Status:           enums.InitialContributionStatus(proof != nil),
		ContributionDate: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, contribution); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contribution")
	}
	s.record(contribution)

	formatted := formatAmount(contribution.Amount)
	if contribution.Status == enums.ContributionStatusPending {
		s.notify(ctx, group.CreatedBy, notifications.Message{
			GroupID: &group.ID,
			Kind:    enums.NotificationKindContributionSubmitted,
			Text:    fmt.Sprintf("%s submitted a contribution of %s MAD with proof for review in %q", user.Username, formatted, group.Name),
		})
	} else {
		s.notifyMembers(ctx, group.ID, notifications.Message{
			GroupID: &group.ID,
			Kind:    enums.NotificationKindContributionAdded,
			Text:    fmt.Sprintf("%s contributed %s MAD to %q", user.Username, formatted, group.Name),
		}, input.UserID)
	}

	dto := FromModel(contribution)
	dto.Username = user.Username
	return dto, nil
}

func (s *service) Approve(ctx context.Context, groupID, contributionID, actingUserID uuid.UUID) (*ContributionDTO, error) {
	group, contribution, err := s.review(ctx, groupID, contributionID, actingUserID, enums.ContributionStatusApproved)
	if err != nil {
		return nil, err
	}

	amount := formatAmount(contribution.Amount)
	s.notify(ctx, contribution.UserID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindContributionApproved,
		Text:    fmt.Sprintf("Your contribution of %s MAD to %q has been approved!", amount, group.Name),
	})

	username, contributor := "", "A member"
	if user, err := s.users.FindByID(ctx, contribution.UserID); err != nil || user == nil {
		s.logg.Warn(s.logg.WithField(ctx, "user_id", contribution.UserID.String()), "contributor lookup failed; broadcasting without name")
	} else {
		username, contributor = user.Username, user.Username
	}
	s.notifyMembers(ctx, group.ID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindContributionAdded,
		Text:    fmt.Sprintf("%s contributed %s MAD to %q", contributor, amount, group.Name),
	}, contribution.UserID, actingUserID)

	dto := FromModel(contribution)
	dto.Username = username
	return dto, nil
}

func (s *service) Reject(ctx context.Context, groupID, contributionID, actingUserID uuid.UUID) (*ContributionDTO, error) {
	group, contribution, err := s.review(ctx, groupID, contributionID, actingUserID, enums.ContributionStatusRejected)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, contribution.UserID, notifications.Message{
		GroupID: &group.ID,
		Kind:    enums.NotificationKindContributionRejected,
		Text: fmt.Sprintf("Your contribution of %s MAD to %q has been rejected. Please contact the admin for more info.",
			formatAmount(contribution.Amount), group.Name),
	})
	return FromModel(contribution), nil
}

// review applies the admin decision and returns the contribution as stored after it.
func (s *service) review(ctx context.Context, groupID, contributionID, actingUserID uuid.UUID, next enums.ContributionStatus) (*models.Group, *models.Contribution, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsAdmin(actingUserID) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the group admin can perform this action")
	}

	changed, err := s.repo.Review(ctx, groupID, contributionID, next, actingUserID, s.now().UTC())
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contribution status")
	}
	if !changed {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending contribution found")
	}

	contribution, err := s.repo.FindByID(ctx, contributionID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload contribution")
	}
	if contribution == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
	}
	s.record(contribution)
	logCtx := s.logg.WithGroupID(ctx, group.ID.String())
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"contribution_id": contribution.ID.String(),
		"status":          string(next),
	}), "contribution reviewed")
	return group, contribution, nil
}

func (s *service) TotalApproved(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	amounts, err := s.repo.ApprovedAmounts(ctx, groupID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum approved contributions")
	}
	return Sum(amounts), nil
}

// Sum adds amounts exactly; an empty slice sums to zero.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total.Round(2)
}

func (s *service) ListApproved(ctx context.Context, groupID, userID uuid.UUID) ([]ContributionDTO, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, group.ID, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStatus(ctx, group.ID, enums.ContributionStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contributions")
	}
	return rows, nil
}

func (s *service) ListPending(ctx context.Context, groupID, actingUserID uuid.UUID) ([]ContributionDTO, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actingUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the group admin can perform this action")
	}
	rows, err := s.repo.ListByStatus(ctx, group.ID, enums.ContributionStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending contributions")
	}
	return rows, nil
}

func (s *service) RecentForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ContributionDTO, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	rows, err := s.repo.RecentApprovedForUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent contributions")
	}
	return rows, nil
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

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *service) requireActive(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.members.IsActive(ctx, groupID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotActiveMember, "you are not an active member of this group")
	}
	return nil
}

func (s *service) record(contribution *models.Contribution) {
	s.metrics.Transition("contribution", string(contribution.Status))
	if contribution.Status == enums.ContributionStatusApproved {
		s.metrics.ContributionAmount(string(contribution.Status), contribution.Amount.InexactFloat64())
	}
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, message notifications.Message) {
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		s.dropped(ctx, message, err)
	}
}

// notifyMembers sends message to every active member except the excluded ids.
func (s *service) notifyMembers(ctx context.Context, groupID uuid.UUID, message notifications.Message, exclude ...uuid.UUID) {
	ids, err := s.members.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		s.dropped(ctx, message, err)
		return
	}
	recipients := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(exclude, id) {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}
	if err := s.notifier.NotifyMany(ctx, recipients, message); err != nil {
		s.dropped(ctx, message, err)
	}
}

func (s *service) dropped(ctx context.Context, message notifications.Message, err error) {
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"kind":  string(message.Kind),
		"error": err.Error(),
	}), "notification dropped")
}

func normalizeProof(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
