package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	notBlankText = "this field cannot be blank"
	dateText     = "must be a date formatted as YYYY-MM-DD"
	requiredText = "this field is required"
)

// customTag is a validation tag with its English message.
// A nil fn only overrides the message of a built-in tag.
type customTag struct {
	tag  string
	fn   validator.Func
	text string
}

var customTags = []customTag{
	{tag: "notblank", fn: notBlankValidation, text: notBlankText},
	{tag: "date", fn: dateValidation, text: dateText},
	{tag: "required", text: requiredText},
	{tag: "required_with", text: requiredText},
}

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	return translator
}

// InitValidators registers field naming, english messages and the shared tags (notblank, date).
// Packages with their own tags register them afterwards with RegisterCustomTranslation.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	validate.RegisterTagNameFunc(jsonFieldName)

	for _, ct := range customTags {
		if ct.fn != nil {
			_ = validate.RegisterValidation(ct.tag, ct.fn)
		}
		RegisterCustomTranslation(validate, translator, ct.tag, ct.text, ct.fn == nil)
	}
}

// jsonFieldName reports fields by their JSON name, so errors match request bodies.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	ovrd := len(override) > 0 && override[0]
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(str) != ""
}

// dateValidation accepts YYYY-MM-DD calendar dates.
func dateValidation(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}
