package models

type UninstallRequest struct {
	ID          string `json:"id"`
	ProgramName string `json:"programName"`
	Count       int    `json:"count"`
	Seq         uint64 `json:"seq"`
}

func (u *UninstallRequest) Copy() *UninstallRequest {
	cp := *u
	return &cp
}
