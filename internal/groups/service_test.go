package groups

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

type stubReader struct {
	groups  map[uuid.UUID]*models.Group
	summary []SummaryRow
	export  []ExportRow
}

func (s *stubReader) FindByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	return s.groups[id], nil
}

func (s *stubReader) ListActiveForUser(context.Context, uuid.UUID) ([]SummaryRow, error) {
	return s.summary, nil
}

func (s *stubReader) ListExportRows(context.Context, uuid.UUID) ([]ExportRow, error) {
	return s.export, nil
}

type stubTxRunner struct{ calls int }

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type recordingWriter struct {
	createErrs []error
	groups     []*models.Group
	members    []*models.GroupMember
}

func (w *recordingWriter) Create(_ context.Context, group *models.Group) error {
	if len(w.createErrs) > 0 {
		err := w.createErrs[0]
		w.createErrs = w.createErrs[1:]
		if err != nil {
			return err
		}
	}
	group.ID = uuid.New()
	w.groups = append(w.groups, group)
	return nil
}

func (w *recordingWriter) AddMember(_ context.Context, member *models.GroupMember) error {
	w.members = append(w.members, member)
	return nil
}

type stubMembers struct{ active map[uuid.UUID]bool }

func (s stubMembers) IsActive(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	return s.active[userID], nil
}

type stubContributions struct {
	total  decimal.Decimal
	recent []contributions.ContributionDTO
	limit  int
}

func (s *stubContributions) TotalApproved(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return s.total, nil
}

func (s *stubContributions) RecentForUser(_ context.Context, _ uuid.UUID, limit int) ([]contributions.ContributionDTO, error) {
	s.limit = limit
	return s.recent, nil
}

type stubInbox struct{ params notifications.ListParams }

func (s *stubInbox) List(_ context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	s.params = params
	return &notifications.ListResult{Items: []models.Notification{{Message: "hello"}}}, nil
}

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s[id], nil
}

type fixture struct {
	reader  *stubReader
	tx      *stubTxRunner
	writer  *recordingWriter
	contrib *stubContributions
	inbox   *stubInbox
	members stubMembers
	users   stubUsers
	codes   []string
}

func newFixture() *fixture {
	return &fixture{
		reader:  &stubReader{groups: map[uuid.UUID]*models.Group{}},
		tx:      &stubTxRunner{},
		writer:  &recordingWriter{},
		contrib: &stubContributions{},
		inbox:   &stubInbox{},
		members: stubMembers{active: map[uuid.UUID]bool{}},
		users:   stubUsers{},
	}
}

func (f *fixture) service(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:          f.reader,
		Tx:            f.tx,
		TxRepo:        func(*gorm.DB) Writer { return f.writer },
		Members:       f.members,
		Contributions: f.contrib,
		Notifications: f.inbox,
		Users:         f.users,
		Clock:         func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
		InviteCode: func() (string, error) {
			if len(f.codes) == 0 {
				return "", errors.New("no codes left")
			}
			code := f.codes[0]
			f.codes = f.codes[1:]
			return code, nil
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if got := pkgerrors.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}

func TestCreateAddsCreatorAsActiveMember(t *testing.T) {
	f := newFixture()
	f.codes = []string{"abcd1234"}
	creator := uuid.New()

	out, err := f.service(t).Create(context.Background(), creator, CreateInput{
		Name:         "  Summer trip ",
		TargetAmount: decimal.RequireFromString("1500"),
		Deadline:     "2025-12-31",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Name != "Summer trip" || out.Category != "Autre" || out.InviteCode != "abcd1234" {
		t.Fatalf("unexpected group %+v", out.GroupDTO)
	}
	if !out.IsAdmin || !out.TotalContributed.IsZero() {
		t.Fatalf("expected creator admin with zero total, got %+v", out)
	}
	if out.Deadline == nil || *out.Deadline != "2025-12-31" {
		t.Fatalf("unexpected deadline %v", out.Deadline)
	}
	if len(f.writer.members) != 1 || f.writer.members[0].UserID != creator || f.writer.members[0].Status != "active" {
		t.Fatalf("expected creator membership, got %+v", f.writer.members)
	}
	if f.writer.members[0].GroupID != out.ID {
		t.Fatalf("membership bound to wrong group")
	}
}

func TestCreateRetriesInviteCodeCollision(t *testing.T) {
	f := newFixture()
	f.codes = []string{"dup00001", "fresh001"}
	f.writer.createErrs = []error{gorm.ErrDuplicatedKey}

	out, err := f.service(t).Create(context.Background(), uuid.New(), CreateInput{
		Name:         "Wedding",
		TargetAmount: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.InviteCode != "fresh001" || f.tx.calls != 2 {
		t.Fatalf("expected second code after one retry, got %q after %d tx", out.InviteCode, f.tx.calls)
	}
}

func TestCreateGivesUpAfterFiveCollisions(t *testing.T) {
	f := newFixture()
	f.codes = []string{"a", "b", "c", "d", "e", "f"}
	for i := 0; i < 6; i++ {
		f.writer.createErrs = append(f.writer.createErrs, gorm.ErrDuplicatedKey)
	}

	_, err := f.service(t).Create(context.Background(), uuid.New(), CreateInput{
		Name:         "Wedding",
		TargetAmount: decimal.NewFromInt(100),
	})
	expectCode(t, err, pkgerrors.CodeInternal)
	if f.tx.calls != inviteCodeAttempts {
		t.Fatalf("expected %d attempts, got %d", inviteCodeAttempts, f.tx.calls)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]CreateInput{
		"blank name":      {Name: " ", TargetAmount: decimal.NewFromInt(1)},
		"zero target":     {Name: "x", TargetAmount: decimal.Zero},
		"sub-cent target": {Name: "x", TargetAmount: decimal.RequireFromString("0.004")},
		"bad deadline":    {Name: "x", TargetAmount: decimal.NewFromInt(1), Deadline: "31/12/2025"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service(t).Create(context.Background(), uuid.New(), input)
			expectCode(t, err, pkgerrors.CodeValidation)
			if f.tx.calls != 0 {
				t.Fatalf("expected no transaction on invalid input")
			}
		})
	}
}

func TestGetRequiresActiveMembership(t *testing.T) {
	f := newFixture()
	admin, outsider := uuid.New(), uuid.New()
	group := &models.Group{ID: uuid.New(), Name: "Trip", TargetAmount: decimal.NewFromInt(1000), CreatedBy: admin}
	f.reader.groups[group.ID] = group
	f.members.active[admin] = true
	f.contrib.total = decimal.NewFromInt(250)
	svc := f.service(t)

	out, err := svc.Get(context.Background(), group.ID, admin)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !out.IsAdmin || !out.Percentage.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected detail %+v", out)
	}

	_, err = svc.Get(context.Background(), group.ID, outsider)
	expectCode(t, err, pkgerrors.CodeNotActiveMember)

	_, err = svc.Get(context.Background(), uuid.New(), admin)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestDashboard(t *testing.T) {
	f := newFixture()
	user := uuid.New()
	f.reader.summary = []SummaryRow{{
		Group:            models.Group{ID: uuid.New(), Name: "Trip", TargetAmount: decimal.NewFromInt(200), CreatedBy: user},
		TotalContributed: decimal.NewFromInt(50),
		MemberCount:      3,
	}}

	dash, err := f.service(t).Dashboard(context.Background(), user)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Groups) != 1 || dash.Groups[0].MemberCount != 3 || !dash.Groups[0].Percentage.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected groups %+v", dash.Groups)
	}
	if f.contrib.limit != contributions.RecentLimit {
		t.Fatalf("expected recent limit %d, got %d", contributions.RecentLimit, f.contrib.limit)
	}
	if !f.inbox.params.UnreadOnly || f.inbox.params.UserID != user {
		t.Fatalf("expected unread notifications for user, got %+v", f.inbox.params)
	}
	if dash.RecentContributions == nil || len(dash.Notifications) != 1 {
		t.Fatalf("unexpected feed %+v", dash)
	}
}

func TestExportCSV(t *testing.T) {
	f := newFixture()
	premium, free := uuid.New(), uuid.New()
	f.users[premium] = &models.User{ID: premium, IsPremium: true}
	f.users[free] = &models.User{ID: free}
	group := &models.Group{ID: uuid.New(), Name: "Été 2025", Category: "Voyage", TargetAmount: decimal.NewFromInt(3000), CreatedBy: premium}
	f.reader.groups[group.ID] = group
	f.reader.export = []ExportRow{
		{Amount: decimal.RequireFromString("200.5"), Description: "hotel, deposit", ContributionDate: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), Username: "amina"},
		{Amount: decimal.NewFromInt(100), ContributionDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Username: "omar"},
	}
	f.members.active[premium] = true
	svc := f.service(t)

	var buf bytes.Buffer
	name, err := svc.ExportCSV(context.Background(), group.ID, premium, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := strings.Join([]string{
		"Group,Été 2025",
		"Target,3000.00",
		"Category,Voyage",
		"",
		"Amount,Description,Date,Contributor",
		`200.50,"hotel, deposit",2025-05-02,amina`,
		"100.00,,2025-04-01,omar",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
	if name != "t--2025-20250601.csv" {
		t.Fatalf("unexpected filename %q", name)
	}

	buf.Reset()
	_, err = svc.ExportCSV(context.Background(), group.ID, free, &buf)
	expectCode(t, err, pkgerrors.CodePremiumRequired)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written when gated")
	}

	f.users[free].IsPremium = true
	_, err = svc.ExportCSV(context.Background(), group.ID, free, &buf)
	expectCode(t, err, pkgerrors.CodeNotActiveMember)
}
