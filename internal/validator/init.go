package validator

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate *validator.Validate
	ginOnce  sync.Once
)

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	mustRegister(validate)
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterGinRules adds the custom rules to gin's binding validator so that
// `binding:"notblank"` works on request models.
func RegisterGinRules() {
	ginOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			mustRegister(v)
		}
	})
}

func mustRegister(v *validator.Validate) {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
}
