package enums

// ProgressStatus classifies a group's pace toward its target.
type ProgressStatus string

const (
	ProgressStatusOnTrack ProgressStatus = "on_track"
	ProgressStatusAtRisk  ProgressStatus = "at_risk"
	ProgressStatusBehind  ProgressStatus = "behind"
)

// FrequencyBand buckets how regularly a member contributes.
type FrequencyBand string

const (
	FrequencyBandHigh   FrequencyBand = "high"
	FrequencyBandMedium FrequencyBand = "medium"
	FrequencyBandLow    FrequencyBand = "low"
)
