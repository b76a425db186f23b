package domain

// Context keys set by the auth middleware and read by admin-facing
// handlers. Values are advisory only: mutating operations re-derive the
// actor's role from the store before acting.
const (
	RequesterIdCtxKey      = "cp-requesterId"
	RequesterSessionCtxKey = "cp-requesterSession"
)

const (
	RoleAdmin   = "admin"
	RoleCitizen = "citizen"
)

// Redis channel carrying vote events for the realtime feed.
const VoteEventChannel = "civicpulse:votes"
