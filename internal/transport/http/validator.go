package http

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	translatorOnce sync.Once
	translator     ut.Translator
)

// setupValidator makes gin's validator report JSON field names and English
// messages. It is idempotent.
func setupValidator() {
	translatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		locale := en.New()
		translator, _ = ut.New(locale, locale).GetTranslator("en")
		_ = entranslations.RegisterDefaultTranslations(v, translator)
	})
}

// bindJSON decodes and validates the body into dst. On failure it returns
// field-level messages.
func bindJSON(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return translateErrors(err)
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return translateErrors(err)
	}
	return nil
}

func translateErrors(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if translator != nil {
				fields[fe.Field()] = fe.Translate(translator)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}
