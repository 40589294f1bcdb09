package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo/repotest"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

func TestRepositoryApprovedEntriesOldestFirst(t *testing.T) {
	conn := repotest.Open(t)
	repo := NewRepository(conn)

	admin := repotest.User(t, conn, "admin")
	alice := repotest.User(t, conn, "alice")
	group := repotest.Group(t, conn, admin, "Trip", "1000")
	repotest.Member(t, conn, group, alice, enums.MembershipStatusActive)

	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	repotest.Contribution(t, conn, group, alice, "200", enums.ContributionStatusApproved, jan.AddDate(0, 1, 0))
	repotest.Contribution(t, conn, group, admin, "300", enums.ContributionStatusApproved, jan)
	repotest.Contribution(t, conn, group, alice, "999", enums.ContributionStatusRejected, jan)

	entries, err := repo.ApprovedEntries(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "admin", entries[0].Username)
	require.True(t, entries[0].Amount.Equal(decimal.NewFromInt(300)))
	require.Equal(t, alice.ID, entries[1].UserID)
	require.True(t, ProgressPct(Total(entries), group.TargetAmount).Equal(decimal.NewFromInt(50)))
}
