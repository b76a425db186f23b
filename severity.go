package civicpulse

import "time"

// Thresholds holds the vote counts at which a report is promoted to a
// higher severity tier. Values come from configuration; call sites never
// hard-code them.
type Thresholds struct {
	Critical int `yaml:"critical"`
	High     int `yaml:"high"`
}

// DefaultThresholds matches the shipped configuration: 100+ votes is
// critical, 20-99 is high, everything below is moderate.
var DefaultThresholds = Thresholds{Critical: 100, High: 20}

// Override is an administrator-set severity tier that takes precedence
// over the vote-derived one.
type Override struct {
	Level  SeverityLevel `json:"level"`
	Reason *string       `json:"reason,omitempty"`
	By     string        `json:"by"`
	At     time.Time     `json:"at"`
}

// SeverityInfo is the classification result for one report.
// DerivedLevel always carries the vote-derived tier so callers can show
// "would be X without override" when IsOverridden is set.
type SeverityInfo struct {
	Level        SeverityLevel `json:"level"`
	Label        string        `json:"label"`
	Description  string        `json:"description"`
	IsOverridden bool          `json:"isOverridden"`
	DerivedLevel SeverityLevel `json:"derivedLevel"`
}

var severityLabels = map[SeverityLevel]struct {
	label       string
	description string
}{
	SeverityCritical: {"Critical Severity", "Immediate action required"},
	SeverityHigh:     {"High Concern", "Elevated priority"},
	SeverityModerate: {"Moderate Concern", "Monitoring status"},
}

// Derive maps a vote count to a severity tier.
func (t Thresholds) Derive(voteCount int) SeverityLevel {
	if voteCount >= t.Critical {
		return SeverityCritical
	}
	if voteCount >= t.High {
		return SeverityHigh
	}
	return SeverityModerate
}

// Classify computes the display severity for a report. A non-nil
// override wins verbatim regardless of vote count; the derived tier is
// still reported alongside it. Pure, total, recomputed on every read.
func (t Thresholds) Classify(voteCount int, override *Override) SeverityInfo {
	derived := t.Derive(voteCount)

	level := derived
	overridden := false
	if override != nil {
		level = override.Level
		overridden = true
	}

	meta := severityLabels[level]
	return SeverityInfo{
		Level:        level,
		Label:        meta.label,
		Description:  meta.description,
		IsOverridden: overridden,
		DerivedLevel: derived,
	}
}
