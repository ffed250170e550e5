package domain

// DecisionReason is the machine-readable reason code attached to an
// authorization decision.
type DecisionReason string

const (
	ReasonSuperuser     DecisionReason = "superuser"
	ReasonExplicitGrant DecisionReason = "explicit-grant"
	ReasonRoleDefault   DecisionReason = "role-default"
	ReasonExpiredGrant  DecisionReason = "expired-grant-denied"
	ReasonNoMembership  DecisionReason = "no-membership"
	ReasonDefaultDeny   DecisionReason = "default-deny"
)

// Decision is the outcome of permission resolution. Resolution precedence is
// fixed: explicit non-expired grant > role default > deny. A superuser flag
// on the principal short-circuits ahead of per-workspace resolution.
type Decision struct {
	Allowed bool           `json:"allowed"`
	Reason  DecisionReason `json:"reason"`
}
