package api

// SurgeDetection describes configuration for the signal surge detection engine.
type SurgeDetection struct {
	MinStandardDeviations    float64            `yaml:"minStandardDeviations,omitempty" json:"minStandardDeviations,omitempty" doc:"minimum z-score above baseline for a point to count as surging"`
	MinPercentageIncrease    float64            `yaml:"minPercentageIncrease,omitempty" json:"minPercentageIncrease,omitempty" doc:"minimum percentage increase over the baseline mean for a point to count as surging"`
	MinDataPointsForBaseline int                `yaml:"minDataPointsForBaseline,omitempty" json:"minDataPointsForBaseline,omitempty" doc:"minimum number of samples required to compute a baseline"`
	SurgeWindowHours         int                `yaml:"surgeWindowHours,omitempty" json:"surgeWindowHours,omitempty" doc:"window in hours used to group candidate surge activity"`
	TrendWindowDays          int                `yaml:"trendWindowDays,omitempty" json:"trendWindowDays,omitempty" doc:"window in days used for trend estimation"`
	BaselineWindowDays       int                `yaml:"baselineWindowDays,omitempty" json:"baselineWindowDays,omitempty" doc:"window in days of history used for baseline statistics"`
	SeverityThresholds       SeverityThresholds `yaml:"severityThresholds,omitempty" json:"severityThresholds,omitempty" doc:"standard-deviation cut-points for each severity tier:"`
	EnableSeasonalDetection  *bool              `yaml:"enableSeasonalDetection,omitempty" json:"enableSeasonalDetection,omitempty" doc:"whether to run seasonal pattern detection (default: true)"`
	Filter                   string             `yaml:"filter,omitempty" json:"filter,omitempty" doc:"optional expression evaluated per data point (variables: count, source, intent, competitor); points failing it are skipped"`
}

// SeverityThresholds holds the standard-deviation cut-point per severity tier.
// Thresholds are expected to be monotonically increasing from minor to critical.
type SeverityThresholds struct {
	Minor       float64 `yaml:"minor,omitempty" json:"minor,omitempty" doc:"minimum z-score for minor severity"`
	Moderate    float64 `yaml:"moderate,omitempty" json:"moderate,omitempty" doc:"minimum z-score for moderate severity"`
	Significant float64 `yaml:"significant,omitempty" json:"significant,omitempty" doc:"minimum z-score for significant severity"`
	Critical    float64 `yaml:"critical,omitempty" json:"critical,omitempty" doc:"minimum z-score for critical severity"`
}

// SeasonalDetectionEnabled reports the effective value of the toggle, defaulting to true.
func (s *SurgeDetection) SeasonalDetectionEnabled() bool {
	return s.EnableSeasonalDetection == nil || *s.EnableSeasonalDetection
}
