package groups

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo/repotest"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

func TestRepositoryCreateInTransaction(t *testing.T) {
	conn := repotest.Open(t)
	client := db.NewFromGorm(conn)
	repo := NewRepository(conn)
	ctx := context.Background()
	creator := repotest.User(t, conn, "creator")

	group := &models.Group{Name: "Trip", TargetAmount: decimal.NewFromInt(500), CreatedBy: creator.ID, InviteCode: "code0001"}
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		scoped := repo.WithTx(tx)
		if err := scoped.Create(ctx, group); err != nil {
			return err
		}
		return scoped.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: creator.ID, Status: enums.MembershipStatusActive})
	})
	require.NoError(t, err)

	found, err := repo.FindByInviteCode(ctx, " CODE0001 ")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, group.ID, found.ID)
	require.Equal(t, models.DefaultGroupCategory, found.Category)

	dup := &models.Group{Name: "Other", TargetAmount: decimal.NewFromInt(1), CreatedBy: creator.ID, InviteCode: "code0001"}
	require.True(t, db.IsUniqueViolation(repo.Create(ctx, dup)))

	missing, err := repo.FindByInviteCode(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRepositoryListActiveForUser(t *testing.T) {
	conn := repotest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	admin := repotest.User(t, conn, "admin")
	member := repotest.User(t, conn, "member")
	pending := repotest.User(t, conn, "pending")
	group := repotest.Group(t, conn, admin, "Trip", "1000")
	repotest.Member(t, conn, group, member, enums.MembershipStatusActive)
	repotest.Member(t, conn, group, pending, enums.MembershipStatusPending)

	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	repotest.Contribution(t, conn, group, member, "120.50", enums.ContributionStatusApproved, day)
	repotest.Contribution(t, conn, group, admin, "79.50", enums.ContributionStatusApproved, day.AddDate(0, 0, 1))
	repotest.Contribution(t, conn, group, admin, "999", enums.ContributionStatusPending, day)

	rows, err := repo.ListActiveForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, group.ID, rows[0].ID)
	require.True(t, rows[0].TotalContributed.Equal(decimal.NewFromInt(200)), "got %s", rows[0].TotalContributed)
	require.EqualValues(t, 2, rows[0].MemberCount)

	rows, err = repo.ListActiveForUser(ctx, pending.ID)
	require.NoError(t, err)
	require.Empty(t, rows)

	export, err := repo.ListExportRows(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, export, 2)
	require.Equal(t, "admin", export[0].Username)
	require.Equal(t, "member", export[1].Username)
}
