package value

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
	KindBinary
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindBinary:
		return "binary"
	default:
		return "null"
	}
}

// Value is a tagged container for data flowing between workflow nodes.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	b    bool
	arr  []Value
	obj  map[string]Value
	bin  []byte
	meta map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float wraps a float.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array wraps a list of values.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object wraps a map of named values. The map is not copied.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = make(map[string]Value)
	}
	return Value{kind: KindObject, obj: fields}
}

// Binary wraps raw bytes. The slice is not copied.
func Binary(data []byte) Value { return Value{kind: KindBinary, bin: data} }

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsInt() bool    { return v.kind == KindInt }
func (v Value) IsFloat() bool  { return v.kind == KindFloat }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsBinary() bool { return v.kind == KindBinary }

// AsString returns the held string and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt returns the held integer and whether the value is an integer.
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

// AsFloat returns the held float and whether the value is a float.
func (v Value) AsFloat() (float64, bool) { return v.flt, v.kind == KindFloat }

// AsBool returns the held boolean and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsArray returns the held items and whether the value is an array.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the held fields and whether the value is an object.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// AsBinary returns the held bytes and whether the value is binary.
func (v Value) AsBinary() ([]byte, bool) { return v.bin, v.kind == KindBinary }

// Len returns the number of elements for arrays and objects, the byte
// length for strings and binary data, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		return len(v.str)
	case KindBinary:
		return len(v.bin)
	default:
		return 0
	}
}

// Append adds an item to an array value and returns the result. Appending
// to a null value creates a one-element array; any other kind is returned
// unchanged.
func (v Value) Append(item Value) Value {
	switch v.kind {
	case KindArray:
		v.arr = append(v.arr, item)
		return v
	case KindNull:
		return Array(item)
	default:
		return v
	}
}

// Index returns the i-th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Field returns the named field of an object value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// SetField sets a field on an object value and returns the result.
// Setting a field on a null value creates an object; any other kind is
// returned unchanged.
func (v Value) SetField(key string, field Value) Value {
	switch v.kind {
	case KindObject:
		v.obj[key] = field
		return v
	case KindNull:
		return Object(map[string]Value{key: field})
	default:
		return v
	}
}

// SetMetadata attaches a metadata entry and returns the result.
func (v Value) SetMetadata(key string, meta Value) Value {
	if v.meta == nil {
		v.meta = make(map[string]Value)
	}
	v.meta[key] = meta
	return v
}

// Metadata returns the named metadata entry.
func (v Value) Metadata(key string) (Value, bool) {
	m, ok := v.meta[key]
	return m, ok
}

// HasMetadata reports whether a metadata entry exists.
func (v Value) HasMetadata(key string) bool {
	_, ok := v.meta[key]
	return ok
}

// Equal reports deep equality of two values. Metadata is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.num == other.num
	case KindFloat:
		return v.flt == other.flt
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, f := range v.obj {
			of, ok := other.obj[k]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	case KindBinary:
		if len(v.bin) != len(other.bin) {
			return false
		}
		for i := range v.bin {
			if v.bin[i] != other.bin[i] {
				return false
			}
		}
		return true
	}
	return false
}
