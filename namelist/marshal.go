package namelist

import "encoding/json"

// MarshalJSON implements json.Marshaler for File.
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToNative())
}

// MarshalJSON implements json.Marshaler for Value.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodable(v))
}

// ToNative converts f to native Go maps keyed by namelist name. A name that
// occurs once maps to its assignments; a repeated name maps to a slice of
// them, in order. Complex values become [re, im] pairs.
func (f *File) ToNative() map[string]any {
	result := make(map[string]any, len(f.namelists))

	for name, group := range f.ToMap() {
		if len(group) == 1 {
			result[name] = toNative(group[0])

			continue
		}

		all := make([]any, len(group))
		for i, m := range group {
			all[i] = toNative(m)
		}

		result[name] = all
	}

	return result
}

// ToNative converts the assignments of n to native Go values keyed by key.
func (n *Namelist) ToNative() map[string]any { return toNative(n.ToMap()) }

func toNative(m map[string]*Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = encodable(v)
	}

	return out
}

// encodable is like [Value.Native] but represents complex numbers as
// two-element slices, which every encoder understands.
func encodable(v *Value) any {
	if v == nil {
		return nil
	}

	switch v.Kind {
	case KindComplex:
		return []float64{real(v.Cmplx), imag(v.Cmplx)}

	case KindArray, KindMixed:
		out := make([]any, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = encodable(e)
		}

		return out

	default:
		return v.Native()
	}
}
