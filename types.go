package civicpulse

// Category classifies the kind of civic problem a report describes.
// The set is open to extension; unknown values are rejected at the API
// boundary, not here.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategorySanitation     Category = "sanitation"
	CategorySafety         Category = "safety"
	CategoryUtilities      Category = "utilities"
	CategoryOther          Category = "other"
)

var categories = map[Category]bool{
	CategoryInfrastructure: true,
	CategorySanitation:     true,
	CategorySafety:         true,
	CategoryUtilities:      true,
	CategoryOther:          true,
}

func (c Category) Valid() bool {
	return categories[c]
}

// Status is the triage state of a report. Transitions are monotonic
// (reported -> in_progress -> resolved -> closed) except by explicit
// administrator action.
type Status string

const (
	StatusReported   Status = "reported"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

var statuses = map[Status]bool{
	StatusReported:   true,
	StatusInProgress: true,
	StatusResolved:   true,
	StatusClosed:     true,
}

func (s Status) Valid() bool {
	return statuses[s]
}

// SeverityLevel is the display priority tier of a report.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityHigh     SeverityLevel = "high"
	SeverityModerate SeverityLevel = "moderate"
)

func (l SeverityLevel) Valid() bool {
	switch l {
	case SeverityCritical, SeverityHigh, SeverityModerate:
		return true
	}
	return false
}
