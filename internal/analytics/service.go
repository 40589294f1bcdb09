package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

type entrySource interface {
	ApprovedEntries(ctx context.Context, groupID uuid.UUID) ([]Entry, error)
}

type groupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
}

type memberChecker interface {
	IsActive(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Service provides progress and analytics reports for a group's members.
type Service interface {
	// GroupProgress returns target, approved total and completion percentage.
	GroupProgress(ctx context.Context, groupID, userID uuid.UUID) (*Progress, error)
	// GroupAnalytics returns the full descriptive report.
	GroupAnalytics(ctx context.Context, groupID, userID uuid.UUID) (*Report, error)
}

// Progress is the short completion view of a group.
type Progress struct {
	GroupID     uuid.UUID       `json:"group_id"`
	Target      decimal.Decimal `json:"target"`
	Contributed decimal.Decimal `json:"contributed"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// Report is the analytics view of a group at GeneratedAt.
type Report struct {
	GroupID             uuid.UUID            `json:"group_id"`
	Target              decimal.Decimal      `json:"target"`
	Deadline            *time.Time           `json:"deadline,omitempty"`
	TotalContributed    decimal.Decimal      `json:"total_contributed"`
	ProgressPct         decimal.Decimal      `json:"progress_pct"`
	Summary             Summary              `json:"summary"`
	Monthly             []MonthTotal         `json:"monthly"`
	Projection          Projection           `json:"projection"`
	RequiredMonthlyRate *decimal.Decimal     `json:"required_monthly_rate"`
	Status              enums.ProgressStatus `json:"status"`
	Members             []MemberStat         `json:"members"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// BuildReport is the pure aggregation behind GroupAnalytics.
func BuildReport(group *models.Group, entries []Entry, now time.Time) Report {
	total := Total(entries)
	monthly := MonthlyTotals(entries)
	amounts := make([]decimal.Decimal, 0, len(entries))
	for _, entry := range entries {
		amounts = append(amounts, entry.Amount)
	}

	report := Report{
		GroupID:          group.ID,
		Target:           group.TargetAmount,
		Deadline:         group.Deadline,
		TotalContributed: total,
		ProgressPct:      ProgressPct(total, group.TargetAmount),
		Summary:          Describe(amounts),
		Monthly:          monthly,
		Projection:       Project(total, group.TargetAmount, monthly),
		Members:          MemberStats(entries, len(monthly)),
		GeneratedAt:      now,
	}

	required, hasDeadline := RequiredMonthlyRate(report.Projection.Remaining, group.Deadline, now)
	if hasDeadline {
		report.RequiredMonthlyRate = &required
	}
	report.Status = Classify(report.ProgressPct, report.Projection.CurrentMonthlyRate, required, hasDeadline)
	return report
}

type service struct {
	entries entrySource
	groups  groupRepository
	members memberChecker
	now     func() time.Time
}

// NewService builds an analytics service over the provided readers.
func NewService(entries entrySource, groups groupRepository, members memberChecker, clock func() time.Time) (Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if groups == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("member checker required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{entries: entries, groups: groups, members: members, now: clock}, nil
}

func (s *service) GroupProgress(ctx context.Context, groupID, userID uuid.UUID) (*Progress, error) {
	group, entries, err := s.load(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	total := Total(entries)
	return &Progress{
		GroupID:     group.ID,
		Target:      group.TargetAmount,
		Contributed: total,
		Percentage:  ProgressPct(total, group.TargetAmount),
	}, nil
}

func (s *service) GroupAnalytics(ctx context.Context, groupID, userID uuid.UUID) (*Report, error) {
	group, entries, err := s.load(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	report := BuildReport(group, entries, s.now().UTC())
	return &report, nil
}

func (s *service) load(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, []Entry, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group")
	}
	if group == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	active, err := s.members.IsActive(ctx, groupID, userID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check membership")
	}
	if !active {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotActiveMember, "you are not an active member of this group")
	}
	entries, err := s.entries.ApprovedEntries(ctx, groupID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contributions")
	}
	return group, entries, nil
}
