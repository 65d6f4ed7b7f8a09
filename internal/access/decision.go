package access

// Reason is an expected, user-facing denial outcome. Denials are values,
// never errors; only StorageUnavailable marks the request as abandoned.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNotMember            Reason = "not_member"
	ReasonBanned               Reason = "banned"
	ReasonScopeDenied          Reason = "scope_denied"
	ReasonBlacklisted          Reason = "blacklisted"
	ReasonProtected            Reason = "protected"
	ReasonQuotaExhausted       Reason = "quota_exhausted"
	ReasonInsufficientDiamonds Reason = "insufficient_diamonds"
	ReasonInvalidCode          Reason = "invalid_code"
	ReasonCodeAlreadyUsed      Reason = "code_already_used"
	ReasonStorageUnavailable   Reason = "storage_unavailable"
)

var reasonMessages = map[Reason]string{
	ReasonNotMember:            "Access restricted. Join the required channels first, then tap Verify.",
	ReasonBanned:               "You are banned from using this bot.",
	ReasonScopeDenied:          "Searches are disabled in DM. Use the support group.",
	ReasonBlacklisted:          "This query is blacklisted.",
	ReasonProtected:            "This number is protected.",
	ReasonQuotaExhausted:       "Daily free limit reached. Add credits via redeem code or refer friends.",
	ReasonInsufficientDiamonds: "Not enough diamonds for this lookup.",
	ReasonInvalidCode:          "Invalid code.",
	ReasonCodeAlreadyUsed:      "Code already used.",
	ReasonStorageUnavailable:   "Service temporarily unavailable, try again later.",
}

// Message is the short human-readable text for a denial.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Request denied."
}

// Charge records what an allowed request actually cost.
type Charge struct {
	Diamonds  int
	Credits   int
	QuotaSlot bool
}

// Decision is the pipeline outcome: either an authorization with the charge
// already applied, or a denial with its reason.
type Decision struct {
	Allowed bool
	Reason  Reason
	Charge  Charge
}

func allow(charge Charge) Decision {
	return Decision{Allowed: true, Charge: charge}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}
