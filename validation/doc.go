// Package validation provides input validation for command specs and
// configuration.
//
// It supports both struct tag validation (using go-playground/validator) and
// programmatic validation with error collection. Both report failures as an
// *errors.AppError with code INVALID_INPUT and per-field details.
//
// # Struct Tag Validation
//
//	type Spec struct {
//	    Binary string `validate:"required"`
//	    Dir    string `validate:"omitempty,dir"`
//	}
//	err := validation.Validate(spec)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("binary", spec.Binary).Custom(spec.MaxOutput >= 0, "max_output", "must not be negative")
//	err := v.Validate()
package validation
