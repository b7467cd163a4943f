package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// ValidationError maps json field names to a message.
type ValidationError struct {
	Errors map[string]string
	tags   map[string]string
}

// Missing reports whether any field failed its required tag.
func (e *ValidationError) Missing() bool {
	for _, tag := range e.tags {
		if tag == "required" {
			return true
		}
	}
	return false
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, field := range e.Fields() {
		msgs = append(msgs, e.Errors[field])
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the failing field names in a stable order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals are validated by their float value (gt=0 etc.)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	mustRegister("user-type", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.UserType(s).Valid()
	})
	mustRegister("budget-type", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.BudgetType(s).Valid()
	})
	mustRegister("job-status", func(fl validator.FieldLevel) bool {
		return models.JobStatus(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// Validate returns a *ValidationError when i fails its tags.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{
		Errors: make(map[string]string, len(verrs)),
		tags:   make(map[string]string, len(verrs)),
	}
	for _, fe := range verrs {
		out.Errors[fe.Field()] = message(fe)
		out.tags[fe.Field()] = fe.Tag()
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "uuid", "uuid4":
		return f + " must be a valid id"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, fe.Param())
	case "email":
		return f + " must be a valid email"
	case "user-type":
		return f + " must be client or freelancer"
	case "budget-type":
		return f + " must be fixed or hourly"
	case "job-status":
		return f + " must be open, in_progress or closed"
	}
	return f + " is invalid"
}
