package errors

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	transMu    sync.RWMutex
	translator ut.Translator
)

// RegisterTranslations installs English messages for v's built-in tags and
// reports field names by their json tag. Call it once with the validator
// gin binds requests with.
func RegisterTranslations(v *validator.Validate) error {
	uni := ut.New(en.New())
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return err
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	transMu.Lock()
	translator = trans
	transMu.Unlock()
	return nil
}

// Message returns the human-readable message for a field error.
func Message(err validator.FieldError) string {
	transMu.RLock()
	trans := translator
	transMu.RUnlock()

	if trans != nil {
		if msg := err.Translate(trans); msg != "" {
			return msg
		}
	}
	return formatValidationError(err)
}
