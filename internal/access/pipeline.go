// Package access decides, for every incoming lookup request, whether it is
// allowed, what it costs, and applies the charge before the provider fetch
// runs. Gates evaluate in a fixed order and each denial is terminal: no
// later gate runs and no later state is touched.
package access

import (
	"context"

	"github.com/rs/zerolog/log"

	"datatrace-bot/internal/store"
)

type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

type Request struct {
	UserID    int64
	Username  string
	FirstName string
	Chat      ChatType
	Kind      string
	Query     string
}

// Membership is the external channel-membership collaborator.
type Membership interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

type Pipeline struct {
	store      *store.Store
	membership Membership

	ownerID        int64
	sudo           map[int64]struct{}
	dailyFreeLimit int

	// Diamond price per lookup kind; kinds absent here are free.
	prices map[string]int
}

func NewPipeline(st *store.Store, membership Membership, ownerID int64, sudoUsers []int64, dailyFreeLimit int, prices map[string]int) *Pipeline {
	sudo := make(map[int64]struct{}, len(sudoUsers))
	for _, id := range sudoUsers {
		sudo[id] = struct{}{}
	}
	if prices == nil {
		prices = map[string]int{}
	}
	return &Pipeline{
		store:          st,
		membership:     membership,
		ownerID:        ownerID,
		sudo:           sudo,
		dailyFreeLimit: dailyFreeLimit,
		prices:         prices,
	}
}

func (p *Pipeline) isOwner(userID int64) bool {
	return userID != 0 && userID == p.ownerID
}

func (p *Pipeline) isPrivileged(userID int64) bool {
	if p.isOwner(userID) {
		return true
	}
	_, ok := p.sudo[userID]
	return ok
}

// HandleRequest runs the gate sequence. On success the charge has already
// been committed; the caller performs the provider fetch afterwards, and a
// fetch failure does not refund the charge.
func (p *Pipeline) HandleRequest(ctx context.Context, req Request) Decision {
	privileged := p.isPrivileged(req.UserID)

	// Membership first, so unauthenticated traffic never touches the ledger.
	if !privileged {
		member, err := p.membership.IsMember(ctx, req.UserID)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", req.UserID).Msg("Membership check failed")
			return deny(ReasonNotMember)
		}
		if !member {
			return deny(ReasonNotMember)
		}
	}

	user, _, err := p.store.CreateIfAbsent(req.UserID, req.Username, req.FirstName, nil)
	if err != nil {
		log.Error().Err(err).Int64("user_id", req.UserID).Msg("Account lookup failed")
		return deny(ReasonStorageUnavailable)
	}
	if err := p.store.TouchLastActive(req.UserID); err != nil {
		log.Warn().Err(err).Int64("user_id", req.UserID).Msg("Failed to touch last_active")
	}

	if user.IsBanned {
		return deny(ReasonBanned)
	}

	if req.Chat == ChatPrivate && !privileged {
		return deny(ReasonScopeDenied)
	}

	blacklisted, err := p.store.IsBlacklisted(req.Query)
	if err != nil {
		return deny(ReasonStorageUnavailable)
	}
	if blacklisted {
		return deny(ReasonBlacklisted)
	}
	protected, err := p.store.IsProtected(req.Query)
	if err != nil {
		return deny(ReasonStorageUnavailable)
	}
	if protected && !p.isOwner(req.UserID) {
		return deny(ReasonProtected)
	}

	charge, decision := p.charge(req, privileged)
	if decision != nil {
		return *decision
	}

	// Audit write is best-effort; a failure never blocks an allowed request.
	if err := p.store.LogSearch(req.UserID, req.Kind, req.Query); err != nil {
		log.Warn().Err(err).Int64("user_id", req.UserID).Msg("Failed to write search log")
	}

	log.Info().
		Int64("user_id", req.UserID).
		Str("kind", req.Kind).
		Str("chat", string(req.Chat)).
		Int("diamonds", charge.Diamonds).
		Int("credits", charge.Credits).
		Bool("quota_slot", charge.QuotaSlot).
		Msg("Lookup allowed")
	return allow(charge)
}

// charge applies the quota/ledger cost for the request. A kind with a
// diamond price bills the diamond ledger only; free kinds in groups burn a
// quota slot, then credits. The deduction result is authoritative; there
// is no pre-check whose answer could go stale under concurrency.
func (p *Pipeline) charge(req Request, privileged bool) (Charge, *Decision) {
	var charge Charge
	if privileged {
		return charge, nil
	}

	if price := p.prices[req.Kind]; price > 0 {
		ok, err := p.store.Adjust(req.UserID, store.FieldDiamonds, price, store.OpDeduct)
		if err != nil {
			d := deny(ReasonStorageUnavailable)
			return charge, &d
		}
		if !ok {
			d := deny(ReasonInsufficientDiamonds)
			return charge, &d
		}
		charge.Diamonds = price
		return charge, nil
	}

	if req.Chat == ChatPrivate {
		// Unreachable for non-privileged users: the scope gate already denied.
		return charge, nil
	}

	if _, err := p.store.EnsureToday(req.UserID); err != nil {
		d := deny(ReasonStorageUnavailable)
		return charge, &d
	}
	ok, err := p.store.ConsumeFreeSlot(req.UserID, p.dailyFreeLimit)
	if err != nil {
		d := deny(ReasonStorageUnavailable)
		return charge, &d
	}
	if ok {
		charge.QuotaSlot = true
		return charge, nil
	}

	ok, err = p.store.Adjust(req.UserID, store.FieldCredits, 1, store.OpDeduct)
	if err != nil {
		d := deny(ReasonStorageUnavailable)
		return charge, &d
	}
	if !ok {
		d := deny(ReasonQuotaExhausted)
		return charge, &d
	}
	charge.Credits = 1
	return charge, nil
}
