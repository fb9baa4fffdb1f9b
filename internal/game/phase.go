package game

// phaseKind discriminates what the machine is waiting on. Exactly one
// variant is active at a time, so the "never waiting on two things"
// invariant holds by construction.
type phaseKind int

const (
	phaseIdle phaseKind = iota
	phaseAuction
	phaseDouble
)

func (k phaseKind) String() string {
	switch k {
	case phaseAuction:
		return "awaiting_auction"
	case phaseDouble:
		return "awaiting_double"
	default:
		return "idle"
	}
}

// pendingAuction holds the card batch awaiting a recorded result. For a
// completed double it holds two cards in play order; the auctioneer is then
// the seat that supplied the second card, not the original revealer.
type pendingAuction struct {
	cards      []*CardInPlay
	auctioneer int
	isDouble   bool
}

// effectiveType is the auction type consulted when nobody buys. For a double
// pair this is the second (non-double) card's type.
func (pa *pendingAuction) effectiveType() AuctionType {
	return pa.cards[len(pa.cards)-1].Type
}

// DoubleAuction is the transient offer/decline state between a double reveal
// and its resolution.
type DoubleAuction struct {
	FirstCard Card
	Revealer  int
	Offerer   int
	Declined  map[int]bool
}

// phase is the machine's tagged waiting state.
type phase struct {
	kind    phaseKind
	auction *pendingAuction
	double  *DoubleAuction
}

func idlePhase() phase { return phase{kind: phaseIdle} }

func auctionPhase(pa *pendingAuction) phase {
	return phase{kind: phaseAuction, auction: pa}
}

func doublePhase(da *DoubleAuction) phase {
	return phase{kind: phaseDouble, double: da}
}
