package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 12, 0, 0, 0, time.UTC)
}

func TestProgressPct(t *testing.T) {
	cases := []struct {
		name   string
		total  string
		target string
		want   string
	}{
		{"half", "500", "1000", "50"},
		{"zero target", "500", "0", "0"},
		{"negative target", "500", "-10", "0"},
		{"over target", "1500", "1000", "150"},
		{"fractional", "1", "3", "33.33"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProgressPct(d(tc.total), d(tc.target)); !got.Equal(d(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestProgressPctFromEntries(t *testing.T) {
	entries := []Entry{{Amount: d("300")}, {Amount: d("200")}}
	if got := ProgressPct(Total(entries), d("1000")); !got.Equal(d("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
}

func TestDescribe(t *testing.T) {
	summary := Describe([]decimal.Decimal{d("100"), d("200"), d("300")})
	if summary.Count != 3 {
		t.Fatalf("expected count 3, got %d", summary.Count)
	}
	if !summary.Mean.Equal(d("200")) || !summary.Median.Equal(d("200")) || !summary.StdDev.Equal(d("100")) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.Min.Equal(d("100")) || !summary.Max.Equal(d("300")) {
		t.Fatalf("unexpected bounds %+v", summary)
	}
}

func TestDescribeSmallSamples(t *testing.T) {
	if got := Describe(nil); got.Count != 0 || !got.Mean.IsZero() {
		t.Fatalf("expected empty summary, got %+v", got)
	}
	single := Describe([]decimal.Decimal{d("42.5")})
	if !single.StdDev.IsZero() {
		t.Fatalf("expected zero std dev for one sample, got %s", single.StdDev)
	}
	if !single.Median.Equal(d("42.5")) {
		t.Fatalf("expected median 42.5, got %s", single.Median)
	}
}

func TestMonthlyTotalsSortedChronologically(t *testing.T) {
	entries := []Entry{
		{Amount: d("10"), Date: day(2025, time.January, 5)},
		{Amount: d("20"), Date: day(2024, time.December, 30)},
		{Amount: d("5"), Date: day(2025, time.January, 20)},
	}
	got := MonthlyTotals(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}
	if got[0].Month != "2024-12" || !got[0].Total.Equal(d("20")) {
		t.Fatalf("unexpected first month %+v", got[0])
	}
	if got[1].Month != "2025-01" || !got[1].Total.Equal(d("15")) {
		t.Fatalf("unexpected second month %+v", got[1])
	}
}

func TestProject(t *testing.T) {
	monthly := []MonthTotal{{Month: "2025-01", Total: d("100")}, {Month: "2025-02", Total: d("300")}}
	projection := Project(d("400"), d("1000"), monthly)
	if !projection.CurrentMonthlyRate.Equal(d("200")) {
		t.Fatalf("expected rate 200, got %s", projection.CurrentMonthlyRate)
	}
	if !projection.Remaining.Equal(d("600")) {
		t.Fatalf("expected remaining 600, got %s", projection.Remaining)
	}
	if projection.EstimatedMonths == nil || !projection.EstimatedMonths.Equal(d("3")) {
		t.Fatalf("expected 3 months, got %v", projection.EstimatedMonths)
	}
}

func TestProjectUnknownWithoutPace(t *testing.T) {
	projection := Project(decimal.Zero, d("1000"), nil)
	if projection.EstimatedMonths != nil {
		t.Fatalf("expected unknown estimate, got %s", projection.EstimatedMonths)
	}
}

func TestProjectRemainingClampedAtZero(t *testing.T) {
	projection := Project(d("1200"), d("1000"), []MonthTotal{{Month: "2025-01", Total: d("1200")}})
	if !projection.Remaining.IsZero() {
		t.Fatalf("expected zero remaining, got %s", projection.Remaining)
	}
	if projection.EstimatedMonths == nil || !projection.EstimatedMonths.IsZero() {
		t.Fatalf("expected zero months, got %v", projection.EstimatedMonths)
	}
}

func TestRequiredMonthlyRate(t *testing.T) {
	now := day(2025, time.March, 1)

	if _, ok := RequiredMonthlyRate(d("600"), nil, now); ok {
		t.Fatal("expected undefined rate without deadline")
	}

	deadline := now.AddDate(0, 0, 90)
	rate, ok := RequiredMonthlyRate(d("600"), &deadline, now)
	if !ok || !rate.Equal(d("200")) {
		t.Fatalf("expected 200 over 3 months, got %s (%v)", rate, ok)
	}

	past := now.AddDate(0, -2, 0)
	rate, ok = RequiredMonthlyRate(d("600"), &past, now)
	if !ok || !rate.Equal(d("600")) {
		t.Fatalf("expected whole remainder for a past deadline, got %s", rate)
	}
}

func TestMonthsUntil(t *testing.T) {
	now := day(2025, time.March, 1)
	if got := MonthsUntil(now.AddDate(0, 0, 1), now); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := MonthsUntil(now.AddDate(0, 0, 31), now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		progress    string
		current     string
		required    string
		hasDeadline bool
		want        enums.ProgressStatus
	}{
		{"complete", "100", "0", "500", true, enums.ProgressStatusOnTrack},
		{"fast enough", "40", "200", "200", true, enums.ProgressStatusOnTrack},
		{"at risk", "40", "140", "200", true, enums.ProgressStatusAtRisk},
		{"behind", "40", "139", "200", true, enums.ProgressStatusBehind},
		{"no deadline with pace", "10", "50", "0", false, enums.ProgressStatusOnTrack},
		{"no deadline no pace", "0", "0", "0", false, enums.ProgressStatusBehind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(d(tc.progress), d(tc.current), d(tc.required), tc.hasDeadline)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestMemberStats(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	entries := []Entry{
		{UserID: alice, Username: "alice", Amount: d("100"), Date: day(2025, time.January, 3)},
		{UserID: bob, Username: "bob", Amount: d("50"), Date: day(2025, time.January, 9)},
		{UserID: alice, Username: "alice", Amount: d("200"), Date: day(2025, time.February, 3)},
		{UserID: alice, Username: "alice", Amount: d("50"), Date: day(2025, time.March, 3)},
	}
	got := MemberStats(entries, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got))
	}

	first := got[0]
	if first.UserID != alice || !first.Total.Equal(d("350")) || first.Count != 3 {
		t.Fatalf("unexpected top member %+v", first)
	}
	if !first.Average.Equal(d("116.67")) {
		t.Fatalf("expected average 116.67, got %s", first.Average)
	}
	if !first.SharePct.Equal(d("87.5")) {
		t.Fatalf("expected share 87.5, got %s", first.SharePct)
	}
	if !first.LastContribution.Equal(day(2025, time.March, 3)) {
		t.Fatalf("unexpected last contribution %s", first.LastContribution)
	}
	if first.Frequency != enums.FrequencyBandHigh {
		t.Fatalf("expected high frequency, got %s", first.Frequency)
	}
	if got[1].Frequency != enums.FrequencyBandLow {
		t.Fatalf("expected low frequency for bob, got %s", got[1].Frequency)
	}
	if band := frequencyBand(2, 4); band != enums.FrequencyBandMedium {
		t.Fatalf("expected medium band, got %s", band)
	}
}

func TestBuildReport(t *testing.T) {
	now := day(2025, time.March, 15)
	deadline := now.AddDate(0, 0, 60)
	group := &models.Group{ID: uuid.New(), TargetAmount: d("1000"), Deadline: &deadline}
	alice := uuid.New()
	entries := []Entry{
		{UserID: alice, Username: "alice", Amount: d("300"), Date: day(2025, time.January, 10)},
		{UserID: alice, Username: "alice", Amount: d("200"), Date: day(2025, time.February, 10)},
	}

	report := BuildReport(group, entries, now)
	if !report.ProgressPct.Equal(d("50")) {
		t.Fatalf("expected 50%%, got %s", report.ProgressPct)
	}
	if report.RequiredMonthlyRate == nil || !report.RequiredMonthlyRate.Equal(d("250")) {
		t.Fatalf("expected required 250, got %v", report.RequiredMonthlyRate)
	}
	if report.Status != enums.ProgressStatusOnTrack {
		t.Fatalf("expected on_track (rate 250 >= 250), got %s", report.Status)
	}
	if len(report.Monthly) != 2 || len(report.Members) != 1 {
		t.Fatalf("unexpected report shape %+v", report)
	}
}
