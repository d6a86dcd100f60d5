package event

// Events published by a village. Village identifies the owning session so
// the output side can route them; it is zero for villages without a client.

// Feedback is a short-lived human-readable notice for the player.
type Feedback struct {
	Village uint64
	Text    string
}

// BalanceChanged carries the ledger balance after a credit or debit.
type BalanceChanged struct {
	Village uint64
	Balance int32
}

// LedgerPosted records one attributable balance change.
type LedgerPosted struct {
	Village uint64
	Rule    string
	Delta   int32
	Balance int32
}

// WinAchieved fires when the win predicate flips from false to true.
type WinAchieved struct {
	Village uint64
	Balance int32
}

// SelectionChanged lists the structures currently offered for an upgrade
// choice; an empty Candidates slice closes the selection.
type SelectionChanged struct {
	Village    uint64
	Candidates []uint32
}

// VillageReset fires after a full session reset.
type VillageReset struct {
	Village    uint64
	Difficulty string
}
