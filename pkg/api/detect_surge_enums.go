package api

// For doc generation, enum definitions must match format `Constant Type = "value" // doc`

// SurgeType classifies the likely nature of a detected surge.
type SurgeType string

const (
	SurgeTypeSuddenSpike       SurgeType = "sudden-spike"       // short burst of activity, up to a few days
	SurgeTypeSustainedTrend    SurgeType = "sustained-trend"    // elevated activity lasting a week or more
	SurgeTypeRecurringPattern  SurgeType = "recurring-pattern"  // surge aligned with a known seasonal month set
	SurgeTypeEventDriven       SurgeType = "event-driven"       // surge attributed to a news event
	SurgeTypeCompetitorRelated SurgeType = "competitor-related" // surge carrying competitor tags
)

// SurgeSeverity grades how far a surge peak deviates from baseline.
type SurgeSeverity string

const (
	SeverityMinor       SurgeSeverity = "minor"       // lowest severity tier
	SeverityModerate    SurgeSeverity = "moderate"    // notable deviation
	SeveritySignificant SurgeSeverity = "significant" // large deviation
	SeverityCritical    SurgeSeverity = "critical"    // extreme deviation
)

// TrendDirection is the longer-run directional slope of activity.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing" // activity is growing over the window
	TrendDecreasing TrendDirection = "decreasing" // activity is shrinking over the window
	TrendStable     TrendDirection = "stable"     // no meaningful slope
)

// ActivityLevel classifies the most recent data point against baseline.
type ActivityLevel string

const (
	ActivitySurging       ActivityLevel = "surging"        // current value crosses the surge threshold
	ActivityElevated      ActivityLevel = "elevated"       // at least one standard deviation above baseline
	ActivityNormal        ActivityLevel = "normal"         // within one standard deviation of baseline
	ActivityBelowBaseline ActivityLevel = "below-baseline" // at least one standard deviation below baseline
)

// PredictionType names the forward-looking prediction kinds.
type PredictionType string

const (
	PredictionContinuation  PredictionType = "continuation"   // an ongoing surge is expected to continue
	PredictionUpcomingSurge PredictionType = "upcoming-surge" // a new surge is expected soon
	PredictionDecline       PredictionType = "decline"        // activity is expected to drop
)

// Granularity is the declared bucket size of a time series.
type Granularity string

const (
	GranularityHourly  Granularity = "hourly"  // one point per hour
	GranularityDaily   Granularity = "daily"   // one point per day
	GranularityWeekly  Granularity = "weekly"  // one point per week
	GranularityMonthly Granularity = "monthly" // one point per month
)

// SeverityRank maps a severity to an ordinal for comparisons; higher is more severe.
func SeverityRank(s SurgeSeverity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeveritySignificant:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	}
	return 0
}
