package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fyp/core"
)

var (
	timeSlotTag  = "timeslot"
	timeSlotText = "must be a time slot formatted as HH:MM-HH:MM"
)

// InitValidators registers the schedule validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(timeSlotTag, timeSlotValidation)
	core.RegisterCustomTranslation(validate, translator, timeSlotTag, timeSlotText)
}

func timeSlotValidation(fl validator.FieldLevel) bool {
	_, err := ParseTimeSlot(fl.Field().String())
	return err == nil
}
