/*
Package req provides helper functions for HTTP request parsing and data binding.

BindJSON decodes a JSON body strictly and then runs go-playground/validator over the
destination's `validate` tags, so handlers receive either a well-formed payload or a
ready-to-send *errs.CustomError.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"guildchat/internal/pkg/errs"
)

// MaxJSONBodySize bounds the size of JSON request bodies (1 MB).
const MaxJSONBodySize int64 = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// BindJSON binds the JSON request body to dst and validates it.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return Validate(dst)
}

// Validate runs struct validation on v and converts the first failure into a CustomError.
func Validate(v any) *errs.CustomError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.NewError(errs.ErrValidationFailed, fieldErrs[0].Field())
	}

	return errs.NewError(errs.ErrInvalidParams)
}
