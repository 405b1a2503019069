package models

type Boss struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IsBeaten        bool   `json:"isBeaten"`
	DeathCount      int    `json:"deathCount"`
	FinalDeathCount *int   `json:"finalDeathCount"`
	Seq             uint64 `json:"seq"`
}

// Copy returns a deep copy, FinalDeathCount included.
func (b *Boss) Copy() *Boss {
	cp := *b
	if b.FinalDeathCount != nil {
		final := *b.FinalDeathCount
		cp.FinalDeathCount = &final
	}
	return &cp
}

// Finalize marks the boss beaten and freezes the current death count.
// A boss that is already beaten keeps its frozen count; one beaten without
// a frozen count gets the current count.
func (b *Boss) Finalize() bool {
	if b.IsBeaten && b.FinalDeathCount != nil {
		return false
	}
	final := b.DeathCount
	b.IsBeaten = true
	b.FinalDeathCount = &final
	return true
}
