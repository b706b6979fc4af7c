package finanzas

import "fmt"

// ValidationResult reports whether a candidate record may be written, with a
// human-readable reason on failure.
type ValidationResult struct {
	OK      bool
	Message string
}

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Message: fmt.Sprintf(format, args...)}
}

// ValidateRecord checks a candidate row against its table's rules: every
// required field non-empty after trimming (first miss short-circuits), and for
// movements exactly one of cuenta_id/contraparte_id/instrumento_id set.
//
// Pure and synchronous. It does not consult the dimension cache: a reference
// to a nonexistent dimension record passes validation.
func ValidateRecord(schema Schema, rec Record) ValidationResult {
	for _, field := range schema.RequiredFields() {
		if rec.Get(field) == "" {
			return invalid("el campo %s es obligatorio", field)
		}
	}
	if schema.Table == TableMovements {
		filled := 0
		for _, field := range MovementDimFields {
			if rec.Get(field) != "" {
				filled++
			}
		}
		if filled != 1 {
			return invalid("debe completar exactamente uno entre: cuenta_id, contraparte_id o instrumento_id")
		}
	}
	return ValidationResult{OK: true}
}
