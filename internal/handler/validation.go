package handler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oggyb/cinemood/internal/db"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding rules to gin's validator.
//
//   - mbti: one of the 16 personality codes, any case. Empty is accepted
//     and means "no type".
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = v.RegisterValidation("mbti", func(fl validator.FieldLevel) bool {
			code := strings.TrimSpace(fl.Field().String())
			return code == "" || db.IsValidMBTI(code)
		})
	})
	return registerErr
}
