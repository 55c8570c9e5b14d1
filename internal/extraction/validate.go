package extraction

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator checks extracted transactions before they enter categorization.
// Date shape is reported by compliance, not here.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Rule  string
}

// ValidationError lists every failed rule of one transaction.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("field '%s' failed '%s'", f.Field, f.Rule))
	}
	return "invalid transaction: " + strings.Join(parts, ", ")
}

// Transaction validates one extracted transaction.
func (v *Validator) Transaction(tx domain.ExtractedTransaction) error {
	err := v.validate.Struct(tx)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
