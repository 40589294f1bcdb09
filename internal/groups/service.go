package groups

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/security"
)

const (
	inviteCodeAttempts = 5
	notActiveMessage   = "you are not an active member of this group"
	premiumMessage     = "this feature requires a premium subscription (19 MAD/month)"
)

// Writer is the transactional slice of the repository used on creation.
type Writer interface {
	Create(ctx context.Context, group *models.Group) error
	AddMember(ctx context.Context, member *models.GroupMember) error
}

type groupReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]SummaryRow, error)
	ListExportRows(ctx context.Context, groupID uuid.UUID) ([]ExportRow, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type memberChecker interface {
	IsActive(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type contributionReader interface {
	TotalApproved(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)
	RecentForUser(ctx context.Context, userID uuid.UUID, limit int) ([]contributions.ContributionDTO, error)
}

type inbox interface {
	List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes group lifecycle and read models.
type Service interface {
	Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*DetailDTO, error)
	Get(ctx context.Context, groupID, userID uuid.UUID) (*DetailDTO, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
	ExportCSV(ctx context.Context, groupID, userID uuid.UUID, w io.Writer) (string, error)
}

// ServiceParams wires the groups service. TxRepo rebinds the writer to the
// transaction handle passed by Tx.
type ServiceParams struct {
	Repo          groupReader
	Tx            txRunner
	TxRepo        func(tx *gorm.DB) Writer
	Members       memberChecker
	Contributions contributionReader
	Notifications inbox
	Users         userRepository
	Logger        *logger.Logger
	Metrics       *metrics.Workflow
	Clock         func() time.Time
	InviteCode    func() (string, error)
}

type service struct {
	repo          groupReader
	tx            txRunner
	txRepo        func(tx *gorm.DB) Writer
	members       memberChecker
	contributions contributionReader
	notifications inbox
	users         userRepository
	logg          *logger.Logger
	metrics       *metrics.Workflow
	now           func() time.Time
	inviteCode    func() (string, error)
}

// NewService validates collaborators and builds the groups service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "groups repository required")
	case params.Tx == nil || params.TxRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Members == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "member checker required")
	case params.Contributions == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "contributions service required")
	case params.Notifications == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	case params.Users == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	inviteCode := params.InviteCode
	if inviteCode == nil {
		inviteCode = security.GenerateInviteCode
	}
	return &service{
		repo:          params.Repo,
		tx:            params.Tx,
		txRepo:        params.TxRepo,
		members:       params.Members,
		contributions: params.Contributions,
		notifications: params.Notifications,
		users:         params.Users,
		logg:          logg,
		metrics:       params.Metrics,
		now:           clock,
		inviteCode:    inviteCode,
	}, nil
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*DetailDTO, error) {
	group, err := newGroup(creatorID, input)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := s.inviteCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
		}
		candidate := *group
		candidate.ID = uuid.Nil
		candidate.InviteCode = code

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			writer := s.txRepo(tx)
			if err := writer.Create(ctx, &candidate); err != nil {
				return err
			}
			return writer.AddMember(ctx, &models.GroupMember{
				GroupID: candidate.ID,
				UserID:  creatorID,
				Status:  enums.MembershipStatusActive,
			})
		})
		if err == nil {
			s.metrics.Transition("group", "created")
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"group_id": candidate.ID.String(),
				"user_id":  creatorID.String(),
			}), "group created")
			out := detail(&candidate, decimal.Zero, creatorID)
			return &out, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create group")
		}
		s.logg.Debug(s.logg.WithField(ctx, "attempt", attempt), "invite code collision")
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invite code")
}

func newGroup(creatorID uuid.UUID, input CreateInput) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name is required")
	}
	target := input.TargetAmount.Round(2)
	if !target.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target amount must be greater than zero")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.DefaultGroupCategory
	}
	group := &models.Group{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Category:     category,
		TargetAmount: target,
		CreatedBy:    creatorID,
	}
	if raw := strings.TrimSpace(input.Deadline); raw != "" {
		deadline, err := time.ParseInLocation(deadlineLayout, raw, time.UTC)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must use the YYYY-MM-DD format")
		}
		group.Deadline = &deadline
	}
	return group, nil
}

func (s *service) Get(ctx context.Context, groupID, userID uuid.UUID) (*DetailDTO, error) {
	group, err := s.loadForMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.contributions.TotalApproved(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := detail(group, total, userID)
	return &out, nil
}

func (s *service) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	rows, err := s.repo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list groups")
	}
	summaries := make([]SummaryDTO, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, SummaryDTO{
			DetailDTO:   detail(&rows[i].Group, rows[i].TotalContributed, userID),
			MemberCount: rows[i].MemberCount,
		})
	}

	recent, err := s.contributions.RecentForUser(ctx, userID, contributions.RecentLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.List(ctx, notifications.ListParams{UserID: userID, UnreadOnly: true})
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Groups:              summaries,
		RecentContributions: recent,
		Notifications:       unread.Items,
	}
	if dashboard.RecentContributions == nil {
		dashboard.RecentContributions = []contributions.ContributionDTO{}
	}
	if dashboard.Notifications == nil {
		dashboard.Notifications = []models.Notification{}
	}
	return dashboard, nil
}

func (s *service) loadForMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group")
	}
	if group == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	active, err := s.members.IsActive(ctx, groupID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check membership")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeNotActiveMember, notActiveMessage)
	}
	return group, nil
}
