package game

import "time"

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TxnAuctionSale      TransactionKind = "auction_sale"
	TxnSelfBuy          TransactionKind = "self_buy"
	TxnFixedPriceNoSale TransactionKind = "fixed_price_no_sale"
	TxnFreeCard         TransactionKind = "free_card"
	TxnRoundPayout      TransactionKind = "round_payout"
)

// Transaction is a single money movement. From/To are seat numbers; nil
// means the bank. Entries are never mutated or deleted; the ledger is the
// sole source of truth for audit history.
type Transaction struct {
	Round       int             `json:"round"`
	From        *int            `json:"from"`
	To          *int            `json:"to"`
	Amount      int             `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	At          time.Time       `json:"at"`
}

// Ledger is the append-only transaction log for one game.
type Ledger struct {
	entries []Transaction
}

func (l *Ledger) append(round int, kind TransactionKind, amount int, from, to *int, description string) {
	l.entries = append(l.entries, Transaction{
		Round:       round,
		From:        from,
		To:          to,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		At:          time.Now(),
	})
}

// Entries returns a copy of all transactions in append order.
func (l *Ledger) Entries() []Transaction {
	out := make([]Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int { return len(l.entries) }

// netFlow returns, for the given seat, total credits minus total debits
// recorded in the ledger.
func (l *Ledger) netFlow(seat int) int {
	net := 0
	for _, t := range l.entries {
		if t.To != nil && *t.To == seat {
			net += t.Amount
		}
		if t.From != nil && *t.From == seat {
			net -= t.Amount
		}
	}
	return net
}

func seatRef(seat int) *int {
	s := seat
	return &s
}
