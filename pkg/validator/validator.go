package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
)

var registerOnce sync.Once

// Register installs the custom tags on gin's validator and makes field
// errors report json names. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = RegisterOn(v)
	})
	return err
}

// RegisterOn installs the custom tags on v and reads rules from the
// binding tag, as gin does.
func RegisterOn(v *validator.Validate) error {
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("bedtype", func(fl validator.FieldLevel) bool {
		return model.BedType(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("bedstatus", func(fl validator.FieldLevel) bool {
		return model.BedStatus(fl.Field().String()).Valid()
	})
}

// Describe turns a binding error into a short client-facing message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, describeField(e))
		}
		return strings.Join(msgs, "; ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.Is(err, io.EOF):
		return "request body is required"
	case stderrors.As(err, &syntaxErr):
		return "malformed JSON"
	case stderrors.As(err, &typeErr):
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	return "invalid request body"
}

func describeField(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "bedtype":
		return fmt.Sprintf("%s must be one of General, ICU, Emergency", e.Field())
	case "bedstatus":
		return fmt.Sprintf("%s must be one of Available, Occupied, Maintenance", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}
