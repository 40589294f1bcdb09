package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo/repotest"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/pagination"
)

func TestRepository_ListPagesNewestFirst(t *testing.T) {
	db := repotest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	user := repotest.User(t, db, "amina")
	other := repotest.User(t, db, "youssef")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		row := models.Notification{
			UserID:    user.ID,
			Kind:      enums.NotificationKindContributionAdded,
			Message:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, &row))
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: other.ID, Kind: enums.NotificationKindJoinPending, Message: "other"}))

	first, err := repo.List(ctx, listNotificationsParams{UserID: user.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.List(ctx, listNotificationsParams{UserID: user.ID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.True(t, rest[0].CreatedAt.Equal(base))
}

func TestRepository_MarkReadScopedToOwner(t *testing.T) {
	db := repotest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := repotest.User(t, db, "owner")
	stranger := repotest.User(t, db, "stranger")

	row := models.Notification{UserID: owner.ID, Kind: enums.NotificationKindMembershipApproved, Message: "approved"}
	require.NoError(t, repo.Create(ctx, &row))

	mark, err := repo.MarkRead(ctx, stranger.ID, row.ID, time.Now())
	require.NoError(t, err)
	require.False(t, mark.Found)

	mark, err = repo.MarkRead(ctx, owner.ID, row.ID, time.Now())
	require.NoError(t, err)
	require.True(t, mark.Found)
	require.True(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, owner.ID, row.ID, time.Now())
	require.NoError(t, err)
	require.True(t, mark.Found)
	require.False(t, mark.Updated)

	count, err := repo.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRepository_MarkAllReadAndUnreadFilter(t *testing.T) {
	db := repotest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	user := repotest.User(t, db, "amina")

	require.NoError(t, repo.CreateMany(ctx, []models.Notification{
		{UserID: user.ID, Kind: enums.NotificationKindContributionAdded, Message: "one"},
		{UserID: user.ID, Kind: enums.NotificationKindContributionAdded, Message: "two"},
	}))

	unread, err := repo.List(ctx, listNotificationsParams{UserID: user.ID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)

	updated, err := repo.MarkAllRead(ctx, user.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	unread, err = repo.List(ctx, listNotificationsParams{UserID: user.ID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Empty(t, unread)
}
