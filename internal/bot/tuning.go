package bot

// Tuning holds the thresholds the purchasing strategies read.
type Tuning struct {
	// Reserve is the balance a careful bot keeps after any purchase.
	Reserve int64
	// ScarcityFree is the number of free tiles at or below which a careful bot
	// ignores its reserve and buys whatever it can afford.
	ScarcityFree int
	// MaxShare caps the fraction of the balance a careful bot spends on one tile.
	MaxShare float64
}

// DefaultTuning keeps roughly a third of the opening balance in hand.
var DefaultTuning = Tuning{
	Reserve:      300,
	ScarcityFree: 3,
	MaxShare:     0.25,
}
