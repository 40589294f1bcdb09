package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

const (
	monthLayout   = "2006-01"
	daysPerMonth  = 30.0
	mediumBandMin = 0.5
)

var (
	hundred     = decimal.NewFromInt(100)
	atRiskRatio = decimal.RequireFromString("0.7")
)

// Entry is one approved contribution as seen by the aggregator.
type Entry struct {
	UserID   uuid.UUID
	Username string
	Amount   decimal.Decimal
	Date     time.Time
}

// Summary holds descriptive statistics of contribution amounts.
type Summary struct {
	Count  int             `json:"count"`
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	StdDev decimal.Decimal `json:"std_dev"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
}

// MonthTotal is the approved amount of one calendar month (UTC).
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Projection estimates when the target will be reached at the current pace.
type Projection struct {
	CurrentMonthlyRate decimal.Decimal  `json:"current_monthly_rate"`
	Remaining          decimal.Decimal  `json:"remaining"`
	EstimatedMonths    *decimal.Decimal `json:"estimated_months"`
}

// MemberStat aggregates one contributor's approved contributions.
type MemberStat struct {
	UserID           uuid.UUID           `json:"user_id"`
	Username         string              `json:"username"`
	Total            decimal.Decimal     `json:"total"`
	Count            int                 `json:"count"`
	Average          decimal.Decimal     `json:"average"`
	LastContribution time.Time           `json:"last_contribution"`
	SharePct         decimal.Decimal     `json:"share_pct"`
	Frequency        enums.FrequencyBand `json:"frequency"`
}

// ProgressPct is total / target × 100, or zero when the target is not positive.
func ProgressPct(total, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return total.Div(target).Mul(hundred).Round(2)
}

// Total sums entry amounts exactly.
func Total(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total
}

// Describe computes mean, median, sample standard deviation, min and max.
// The standard deviation is zero with fewer than two samples.
func Describe(amounts []decimal.Decimal) Summary {
	if len(amounts) == 0 {
		return Summary{}
	}
	data := make(stats.Float64Data, 0, len(amounts))
	for _, amount := range amounts {
		data = append(data, amount.InexactFloat64())
	}

	summary := Summary{Count: len(data)}
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	minimum, _ := stats.Min(data)
	maximum, _ := stats.Max(data)
	summary.Mean = money(mean)
	summary.Median = money(median)
	summary.Min = money(minimum)
	summary.Max = money(maximum)
	if len(data) > 1 {
		stdDev, _ := stats.StandardDeviationSample(data)
		summary.StdDev = money(stdDev)
	}
	return summary
}

// MonthlyTotals buckets entries by calendar month in UTC, oldest month first.
func MonthlyTotals(entries []Entry) []MonthTotal {
	buckets := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		key := entry.Date.UTC().Format(monthLayout)
		buckets[key] = buckets[key].Add(entry.Amount)
	}
	out := make([]MonthTotal, 0, len(buckets))
	for month, total := range buckets {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Project derives the current monthly rate from the monthly totals and the
// months still needed at that rate. EstimatedMonths is nil when the rate is zero.
func Project(total, target decimal.Decimal, monthly []MonthTotal) Projection {
	projection := Projection{Remaining: Remaining(total, target), CurrentMonthlyRate: decimal.Zero}
	if len(monthly) > 0 {
		sum := decimal.Zero
		for _, month := range monthly {
			sum = sum.Add(month.Total)
		}
		projection.CurrentMonthlyRate = sum.Div(decimal.NewFromInt(int64(len(monthly)))).Round(2)
	}
	if projection.CurrentMonthlyRate.IsPositive() {
		months := projection.Remaining.Div(projection.CurrentMonthlyRate).Round(1)
		projection.EstimatedMonths = &months
	}
	return projection
}

// Remaining is the amount still missing to reach target, never negative.
func Remaining(total, target decimal.Decimal) decimal.Decimal {
	remaining := target.Sub(total)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RequiredMonthlyRate is the monthly amount needed to close remaining by the
// deadline. ok is false without a deadline. A deadline that is close or
// already past counts as one month.
func RequiredMonthlyRate(remaining decimal.Decimal, deadline *time.Time, now time.Time) (rate decimal.Decimal, ok bool) {
	if deadline == nil {
		return decimal.Zero, false
	}
	months := MonthsUntil(*deadline, now)
	return remaining.Div(decimal.NewFromInt(months)).Round(2), true
}

// MonthsUntil counts started 30-day periods between now and deadline, at least 1.
func MonthsUntil(deadline, now time.Time) int64 {
	days := deadline.Sub(now).Hours() / 24
	months := int64(math.Ceil(days / daysPerMonth))
	if months < 1 {
		return 1
	}
	return months
}

// Classify rates a group's pace against its deadline. Without a deadline
// (hasDeadline false) any positive pace counts as on track.
func Classify(progressPct, currentRate, requiredRate decimal.Decimal, hasDeadline bool) enums.ProgressStatus {
	if progressPct.GreaterThanOrEqual(hundred) {
		return enums.ProgressStatusOnTrack
	}
	if !hasDeadline {
		if currentRate.IsPositive() {
			return enums.ProgressStatusOnTrack
		}
		return enums.ProgressStatusBehind
	}
	if currentRate.GreaterThanOrEqual(requiredRate) {
		return enums.ProgressStatusOnTrack
	}
	if currentRate.GreaterThanOrEqual(requiredRate.Mul(atRiskRatio)) {
		return enums.ProgressStatusAtRisk
	}
	return enums.ProgressStatusBehind
}

// MemberStats aggregates entries per contributor, largest total first.
// activeMonths is the number of months the group has received contributions.
func MemberStats(entries []Entry, activeMonths int) []MemberStat {
	groupTotal := Total(entries)
	index := make(map[uuid.UUID]*MemberStat)
	order := make([]uuid.UUID, 0)
	for _, entry := range entries {
		stat, ok := index[entry.UserID]
		if !ok {
			stat = &MemberStat{UserID: entry.UserID, Username: entry.Username}
			index[entry.UserID] = stat
			order = append(order, entry.UserID)
		}
		stat.Total = stat.Total.Add(entry.Amount)
		stat.Count++
		if entry.Date.After(stat.LastContribution) {
			stat.LastContribution = entry.Date
		}
	}

	out := make([]MemberStat, 0, len(order))
	for _, id := range order {
		stat := index[id]
		stat.Average = stat.Total.Div(decimal.NewFromInt(int64(stat.Count))).Round(2)
		stat.SharePct = ProgressPct(stat.Total, groupTotal)
		stat.Frequency = frequencyBand(stat.Count, activeMonths)
		out = append(out, *stat)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Username < out[j].Username
	})
	return out
}

func frequencyBand(count, activeMonths int) enums.FrequencyBand {
	if activeMonths < 1 {
		activeMonths = 1
	}
	ratio := float64(count) / float64(activeMonths)
	switch {
	case ratio >= 1:
		return enums.FrequencyBandHigh
	case ratio >= mediumBandMin:
		return enums.FrequencyBandMedium
	default:
		return enums.FrequencyBandLow
	}
}

func money(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}
