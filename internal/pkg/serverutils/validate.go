// FILE: internal/pkg/serverutils/validate.go
package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on an inbound DTO.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("field %s failed on rule %s", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
