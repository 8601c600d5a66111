package request

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the custom tags used by the request DTOs.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("distinct_seats", distinctSeats)
}

func distinctSeats(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}

	seats, ok := field.Interface().([]SeatRequest)
	if !ok {
		return false
	}

	seen := make(map[SeatRequest]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
	}
	return true
}
