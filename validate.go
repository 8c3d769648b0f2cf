package fetch

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/fetchlib/fetch/download"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("fetch: no 'en' translator registered")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic("fetch: registering translations: " + err.Error())
	}

	// Report fields under their json names so violations match the
	// names callers actually write.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name, _, _ := strings.Cut(fld.Tag.Get("json"), ","); name != "-" {
			return name
		}

		return ""
	})

	// Hex sequences other than 0x2C and 0x7C stay literal in tag
	// params, and no character-class tag rejects "." or "..", so the
	// bare-name rule is registered as code.
	if err := validate.RegisterValidation("barename", func(fl validator.FieldLevel) bool {
		return download.BareName(fl.Field().String())
	}); err != nil {
		panic("fetch: registering barename rule: " + err.Error())
	}
}

// Validate checks an options model against its declared constraints.
// Violations come back as [FieldErrors]; any other failure is returned
// as-is.
func Validate(val any) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(FieldErrors, 0, len(verrors))
	for _, verror := range verrors {
		fields = append(fields, FieldError{
			Field: verror.Field(),
			Err:   messageForTag(verror),
		})
	}

	return fields
}

// FieldError describes one violated constraint on one field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors collects every violation found in a single model.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	var b strings.Builder
	for i, f := range fe {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Err)
	}

	return b.String()
}

// messageForTag renders a readable message, overriding the stock
// translations for tags whose defaults read poorly on these models.
func messageForTag(verror validator.FieldError) string {
	switch verror.Tag() {
	case "excluded_with":
		return "cannot be combined with " + strings.ToLower(verror.Param())
	case "barename":
		return "must be a bare file name"
	default:
		return verror.Translate(translator)
	}
}
