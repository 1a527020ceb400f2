package validation

import "github.com/spf13/cast"

// FromValues flattens decoded JSON values into an Input. Numbers are written
// without exponent, booleans as "true"/"false". Null and values that have no
// scalar string form (objects, arrays) become "".
func FromValues(values map[string]any) Input {
	in := make(Input, len(values))
	for k, raw := range values {
		s, err := cast.ToStringE(raw)
		if err != nil {
			s = ""
		}
		in[k] = s
	}
	return in
}
