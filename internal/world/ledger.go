package world

// Rule attributes a ledger change to the game rule that caused it.
type Rule string

const (
	RulePickup         Rule = "pickup"
	RuleWellYield      Rule = "well_yield"
	RuleVillagerReward Rule = "villager_reward"
	RuleConstruction   Rule = "construction"
	RuleUpgrade        Rule = "upgrade"
	RuleReset          Rule = "reset"
)

// LedgerEntry is one applied balance change.
type LedgerEntry struct {
	Rule    Rule
	Delta   int
	Balance int
}

// Ledger is the single water drop counter of a village. The balance never
// goes negative and only Credit, Debit and reset change it.
type Ledger struct {
	balance int
	post    func(LedgerEntry)
}

// NewLedger returns a ledger holding start drops. post, if non-nil, receives
// every applied change.
func NewLedger(start int, post func(LedgerEntry)) *Ledger {
	if start < 0 {
		start = 0
	}
	return &Ledger{balance: start, post: post}
}

func (l *Ledger) Balance() int { return l.balance }

// Credit adds amount drops. Non-positive amounts are ignored.
func (l *Ledger) Credit(rule Rule, amount int) {
	if amount <= 0 {
		return
	}
	l.balance += amount
	l.emit(rule, amount)
}

// Debit removes amount drops, or returns ErrNotEnoughDrops and leaves the
// balance untouched.
func (l *Ledger) Debit(rule Rule, amount int) error {
	if amount < 0 {
		return nil
	}
	if !l.CanAfford(amount) {
		return ErrNotEnoughDrops
	}
	if amount == 0 {
		return nil
	}
	l.balance -= amount
	l.emit(rule, -amount)
	return nil
}

func (l *Ledger) CanAfford(amount int) bool {
	return l.balance >= amount
}

func (l *Ledger) reset(start int) {
	if start < 0 {
		start = 0
	}
	delta := start - l.balance
	l.balance = start
	if delta != 0 {
		l.emit(RuleReset, delta)
	}
}

func (l *Ledger) emit(rule Rule, delta int) {
	if l.post != nil {
		l.post(LedgerEntry{Rule: rule, Delta: delta, Balance: l.balance})
	}
}
