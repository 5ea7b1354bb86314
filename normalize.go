package toon

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// normalizer converts arbitrary Go values into the canonical tree. It
// carries no state beyond its configuration; each call tree works on
// its own input.
type normalizer struct {
	mode     Mode
	maxDepth int
}

// maxExactInt is the largest integer a float64 represents exactly.
// Integers beyond it are treated as big integers rather than silently
// losing precision.
const maxExactInt = 1 << 53

func isAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

func (n *normalizer) normalize(v any, depth int) (Value, error) {
	if depth > n.maxDepth {
		return nil, &DepthExceededError{MaxDepth: n.maxDepth}
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return val, nil
	case string:
		return val, nil
	case float64:
		return n.number(val)
	case float32:
		return n.number(float64(val))
	case int:
		return n.number(float64(val))
	case int64:
		return n.number(float64(val))
	case json.Number:
		return n.jsonNumber(val)
	case *big.Int:
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "*big.Int"}
		}
		return val.String(), nil
	case big.Int:
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "big.Int"}
		}
		return val.String(), nil
	case time.Time:
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "time.Time"}
		}
		return val.Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return n.normalize(*val, depth)
	case absent:
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "toon.Absent", Reason: "value is not present"}
		}
		// Sequence elements become null; mapping handlers drop the
		// field before reaching this point.
		return nil, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(val), nil
	case []Value:
		return n.sequence(val, depth)
	case map[string]Value:
		return n.stringMap(val, depth)
	case *Object:
		if val == nil {
			return nil, nil
		}
		obj := NewObject()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			if isAbsent(pair.Value) && n.mode == Sanitize {
				continue
			}
			out, err := n.normalize(pair.Value, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(pair.Key, out)
		}
		return obj, nil
	}

	return n.reflectValue(v, depth)
}

func (n *normalizer) number(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "float64", Reason: "non-finite number"}
		}
		return nil, nil
	}
	if f == 0 {
		return float64(0), nil // folds negative zero
	}
	return f, nil
}

func (n *normalizer) jsonNumber(num json.Number) (Value, error) {
	s := num.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil && i >= -maxExactInt && i <= maxExactInt {
			return n.number(float64(i))
		}
		// Integer beyond exact float64 range: same treatment as a
		// big integer.
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "json.Number", Reason: "integer exceeds float64 precision"}
		}
		return s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: "json.Number", Reason: "does not fit a float64"}
		}
		return s, nil
	}
	return n.number(f)
}

func (n *normalizer) sequence(s []Value, depth int) (Value, error) {
	out := make([]Value, len(s))
	for i, el := range s {
		norm, err := n.normalize(el, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = norm
	}
	return out, nil
}

func (n *normalizer) stringMap(m map[string]Value, depth int) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := NewObject()
	for _, k := range keys {
		raw := m[k]
		if isAbsent(raw) && n.mode == Sanitize {
			continue
		}
		out, err := n.normalize(raw, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(k, out)
	}
	return obj, nil
}

// reflectValue handles everything the type switch does not: named
// basic types, arbitrary slices and maps, structs, and the kinds that
// have no JSON representation at all.
func (n *normalizer) reflectValue(v any, depth int) (Value, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		if k := rv.Elem().Kind(); k == reflect.Struct || k == reflect.Array {
			if out, handled, err := n.stringerFallback(v, rv.Type()); handled {
				return out, err
			}
		}
		return n.normalize(rv.Elem().Interface(), depth)
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return n.normalize(rv.Elem().Interface(), depth)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return n.number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return n.number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return n.number(rv.Float())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes()), nil
		}
		return n.reflectSequence(rv, depth)
	case reflect.Array:
		if out, handled, err := n.stringerFallback(v, rv.Type()); handled {
			return out, err
		}
		return n.reflectSequence(rv, depth)
	case reflect.Map:
		return n.reflectMap(rv, depth)
	case reflect.Struct:
		if out, handled, err := n.stringerFallback(v, rv.Type()); handled {
			return out, err
		}
		obj := NewObject()
		if err := n.structFields(rv, obj, depth); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		// Func, Chan, Complex, UnsafePointer: nothing in the JSON
		// value space corresponds to these.
		if n.mode == Strict {
			return nil, &InvalidValueError{Type: rv.Type().String()}
		}
		return nil, nil
	}
}

// stringerFallback classifies struct and array types that carry
// behavior. A type with its own String method is not a plain record:
// strict mode rejects it, sanitize mode keeps its string form.
func (n *normalizer) stringerFallback(v any, rt reflect.Type) (Value, bool, error) {
	s, ok := v.(fmt.Stringer)
	if !ok {
		return nil, false, nil
	}
	if n.mode == Strict {
		return nil, true, &InvalidValueError{Type: rt.String(), Reason: "not a plain object"}
	}
	return s.String(), true, nil
}

func (n *normalizer) reflectSequence(rv reflect.Value, depth int) (Value, error) {
	out := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		norm, err := n.normalize(rv.Index(i).Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = norm
	}
	return out, nil
}

func (n *normalizer) reflectMap(rv reflect.Value, depth int) (Value, error) {
	type pair struct {
		name string
		key  reflect.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() != reflect.String {
			if n.mode == Strict {
				return nil, &InvalidValueError{Type: rv.Type().String(), Reason: "map keys must be strings"}
			}
			pairs = append(pairs, pair{name: fmt.Sprint(k.Interface()), key: k})
			continue
		}
		pairs = append(pairs, pair{name: k.String(), key: k})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	obj := NewObject()
	for _, p := range pairs {
		raw := rv.MapIndex(p.key).Interface()
		if isAbsent(raw) && n.mode == Sanitize {
			continue
		}
		out, err := n.normalize(raw, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(p.name, out)
	}
	return obj, nil
}

func (n *normalizer) structFields(rv reflect.Value, obj *Object, depth int) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, tagOpts, _ := strings.Cut(tag, ",")

		fv := rv.Field(i)
		if f.Anonymous && name == "" {
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct {
				if err := n.structFields(ev, obj, depth); err != nil {
					return err
				}
				continue
			}
		}
		if tagOption(tagOpts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		if name == "" {
			name = f.Name
		}

		raw := fv.Interface()
		if isAbsent(raw) && n.mode == Sanitize {
			continue
		}
		out, err := n.normalize(raw, depth+1)
		if err != nil {
			return err
		}
		obj.Set(name, out)
	}
	return nil
}

func tagOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
