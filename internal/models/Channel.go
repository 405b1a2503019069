package models

type Channel struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsDefault   bool   `json:"isDefault"`
	Seq         uint64 `json:"seq"`
}

func (c *Channel) Copy() *Channel {
	cp := *c
	return &cp
}
