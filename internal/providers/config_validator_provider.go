package providers

import (
	"counterd/internal/structures"
	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags of the decoded config and returns the
// first failing rule.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.StopOnError = true
	if v.Validate() {
		return nil
	}
	return v.Errors.ErrOrNil()
}
