package validators

import (
	"lms/middleware"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate   = validator.New()
	translator ut.Translator

	requiredTag  = "required"
	requiredText = "{0} is required!"
	noHTMLTag    = "nohtml"
	noHTMLText   = "{0} contains invalid characters!"
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(noHTMLTag, func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "<>{}")
	})
	registerTranslation(noHTMLTag, noHTMLText, false)
	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate runs struct tags on v and returns messages keyed by JSON field name.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}

	errors := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		key := strings.SplitN(fe.Namespace(), ".", 2)
		name := fe.Field()
		if len(key) == 2 {
			name = key[1]
		}
		errors[name] = fe.Translate(translator)
	}
	return errors
}

// Body parses the JSON body into a new T, validates it and stores it in
// c.Locals(local). prepare, when set, runs before the tag checks; it may
// normalize the request and report errors the tags cannot express.
func Body[T any](local string, prepare func(*T) map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := map[string]string{}
		if prepare != nil {
			for k, v := range prepare(reqData) {
				errors[k] = v
			}
		}
		for k, v := range Validate(reqData) {
			if _, ok := errors[k]; !ok {
				errors[k] = v
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(local, reqData)
		return c.Next()
	}
}

// IDParam validates that the named route params are positive integers and
// stores each in c.Locals under the same name as a uint.
func IDParam(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)
		for _, name := range names {
			raw := strings.TrimSpace(c.Params(name))
			id, err := strconv.ParseUint(raw, 10, 64)
			if raw == "" || err != nil || id == 0 {
				errors[name] = name + " must be a positive integer!"
				continue
			}
			c.Locals(name, uint(id))
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}
