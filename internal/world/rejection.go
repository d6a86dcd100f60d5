package world

import "fmt"

// Rejection is a refused player action. Its text is shown to the player
// verbatim. A rejected action never changes village state.
type Rejection struct {
	text string
	base *Rejection
}

func (r *Rejection) Error() string { return r.text }

// Is matches the sentinel a rejection was derived from.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && r.base != nil && t == r.base
}

func reject(text string) *Rejection {
	return &Rejection{text: text}
}

// rejectf derives a rejection with a more specific text from a sentinel.
func rejectf(base *Rejection, format string, args ...any) *Rejection {
	return &Rejection{text: fmt.Sprintf(format, args...), base: base}
}

var (
	ErrNotEnoughDrops   = reject("Not enough water drops!")
	ErrOutOfBounds      = reject("Place inside the village area!")
	ErrOccupied         = reject("Can't build here!")
	ErrUnknownKind      = reject("Please enter 'wall' or 'house'.")
	ErrNothingToUpgrade = reject("No house to upgrade!")
	ErrWallsUpgraded    = reject("Walls are already upgraded!")
	ErrWellCooldown     = reject("Water can only be pumped every 2 minutes!")
	ErrBadDifficulty    = reject("Please type 'Easy', 'Normal', or 'Hard' to begin.")
	ErrNoPendingBuild   = reject("Choose something to build first!")
	ErrNotMovable       = reject("That can't be moved!")
	ErrNoSuchEntity     = reject("Nothing to interact with!")
	ErrNotSelectable    = reject("Click the house you want to upgrade")
)
