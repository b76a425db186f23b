package civicpulse

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// IntegrityHash produces the tamper-evidence stamp recorded on reports
// and votes at creation time. The timestamp participates at nanosecond
// resolution, so two stamps for the same subject at different instants
// differ; an observer cannot correlate a voter's stamps across reports.
//
// This is a local integrity stamp, not a commitment scheme or a chained
// ledger: a party knowing subject, salt and a narrow submission window
// could enumerate timestamps to match a stamp. That is outside the
// threat model (spam deterrence, not non-repudiation).
func IntegrityHash(subject, salt string, at time.Time) string {
	h := sha256.New()
	h.Write([]byte(subject))
	if salt != "" {
		h.Write([]byte("-"))
		h.Write([]byte(salt))
	}
	h.Write([]byte("-"))
	h.Write([]byte(strconv.FormatInt(at.UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// ReportStamp is the immutable integrity hash set once when a report is
// created.
func ReportStamp(title string, at time.Time) string {
	return IntegrityHash(title, "", at)
}

// VoteStamp is the integrity hash recorded with each accepted vote.
func VoteStamp(reportID, fingerprint string, at time.Time) string {
	return IntegrityHash(reportID, fingerprint, at)
}
