package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"stockroom/internal/models"

	"github.com/go-playground/validator/v10"
)

// plainDecimal matches what the "numeric" tag accepts for strings.
var plainDecimal = regexp.MustCompile(`^[-+]?[0-9]+(?:\.[0-9]+)?$`)

// validatePositive reports whether the field parses as a finite number > 0.
func validatePositive(fl validator.FieldLevel) bool {
	f, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f > 0
}

// validateDecimals limits the fractional part to two digits. Values that are
// not plain decimals pass here; the "numeric" rule reports them.
func validateDecimals(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !plainDecimal.MatchString(s) {
		return true
	}
	dot := strings.IndexByte(s, '.')
	return dot < 0 || len(s)-dot-1 <= 2
}

// validatePriceCeiling keeps prices within the decimal(10,2) column. Values
// that are not plain decimals pass here.
func validatePriceCeiling(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !plainDecimal.MatchString(s) {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f < models.MaxPrice
}

// validateRecordID accepts positive base-10 integers only.
func validateRecordID(fl validator.FieldLevel) bool {
	n, err := strconv.ParseUint(fl.Field().String(), 10, 64)
	return err == nil && n > 0
}
