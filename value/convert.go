package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromAny converts a generic decoded tree (the shapes produced by
// encoding/json and yaml.v3) into a Value. Unknown scalar types fall back
// to their string form.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		// json decodes every number as float64; keep whole numbers integral.
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case []byte:
		return Binary(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, f := range t {
			fields[k] = FromAny(f)
		}
		return Object(fields)
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, f := range t {
			fields[fmt.Sprint(k)] = FromAny(f)
		}
		return Object(fields)
	default:
		return String(fmt.Sprint(t))
	}
}

// FromAnyMap converts a generic string-keyed map into a Value map.
func FromAnyMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// ToAny converts a Value back into the generic tree shape accepted by
// encoding/json and yaml.v3 marshalers.
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.ToAny()
		}
		return out
	case KindBinary:
		return v.bin
	default:
		return nil
	}
}

// ToAnyMap converts a Value map into a generic string-keyed map.
func ToAnyMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.ToAny()
	}
	return out
}

// ToString renders the value as a string. Scalars use their canonical
// form, null renders as "null", binary as base64, and arrays and objects
// as compact JSON.
func (v Value) ToString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindBinary:
		return base64.StdEncoding.EncodeToString(v.bin)
	case KindArray, KindObject:
		data, err := json.Marshal(v.ToAny())
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return "null"
	}
}

// ToInt coerces the value to an integer. Floats truncate, booleans map to
// 0/1, and strings are parsed.
func (v Value) ToInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.num, nil
	case KindFloat:
		return int64(v.flt), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		n, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to integer: %w", v.str, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to integer", v.kind)
	}
}

// ToFloat coerces the value to a float. Integers widen, booleans map to
// 0/1, and strings are parsed.
func (v Value) ToFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.flt, nil
	case KindInt:
		return float64(v.num), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float: %w", v.str, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.kind)
	}
}

// ToBool coerces the value to a boolean: numbers are true when non-zero,
// strings when non-empty, arrays and objects when non-empty, null is
// false.
func (v Value) ToBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.num != 0
	case KindFloat:
		return v.flt != 0
	case KindString:
		return v.str != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return len(v.obj) > 0
	case KindBinary:
		return len(v.bin) > 0
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.ToAny(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}
