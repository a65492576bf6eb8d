package paramfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// maxDepth bounds the nesting accepted by Normalize
const maxDepth = 256

var (
	// ErrInvalidFile is returned when a document can not be parsed
	ErrInvalidFile = errors.New("invalid parameter file")

	errTooDeep = errors.New("value nested too deeply")
)

// Member is one key of an Object
type Member struct {
	Key   string
	Value any
}

// Object is a mapping that is written in member order instead of sorted
type Object []Member

// Normalize converts v into the value tree written by Marshal.
//
// Integer kinds (including named types such as enums) narrow to int64 or
// uint64, bool kinds to bool, float kinds to float64 and string kinds to
// string. Maps and slices are converted recursively. Any other value is
// replaced by its string form.
func Normalize(v any) (any, error) {
	return normalize(reflect.ValueOf(v), 0)
}

func normalize(v reflect.Value, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch x := v.Interface().(type) {
	case json.Number:
		return x, nil
	case Object:
		out := make(Object, len(x))
		for i, m := range x {
			nv, err := normalize(reflect.ValueOf(m.Value), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = Member{Key: m.Key, Value: nv}
		}
		return out, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return normalize(v.Elem(), depth+1)
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			nv, err := normalize(iter.Value(), depth+1)
			if err != nil {
				return nil, err
			}
			out[mapKey(iter.Key())] = nv
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 && v.Kind() == reflect.Slice {
			return string(v.Bytes()), nil
		}
		out := make([]any, v.Len())
		for i := range out {
			nv, err := normalize(v.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}

	if s, ok := stringer(v); ok {
		return s, nil
	}
	return fmt.Sprint(v.Interface()), nil
}

func stringer(v reflect.Value) (string, bool) {
	if !v.CanInterface() {
		return "", false
	}
	switch x := v.Interface().(type) {
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// Marshal encodes v as compact JSON text. Non-finite floats are written as
// NaN, Infinity and -Infinity.
func Marshal(v any) ([]byte, error) {
	return MarshalIndent(v, "")
}

// MarshalIndent is like Marshal but puts every member on its own line,
// indented by indent per level. Map keys are sorted.
func MarshalIndent(v any, indent string) ([]byte, error) {
	nv, err := Normalize(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, nv, indent, 0); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any, indent string, level int) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(x, 10))
	case float64:
		buf.WriteString(formatFloat(x))
	case json.Number:
		buf.WriteString(x.String())
	case string:
		return encodeString(buf, x)
	case []any:
		if len(x) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, level+1)
			if err := encode(buf, item, indent, level+1); err != nil {
				return err
			}
		}
		newline(buf, indent, level)
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make(Object, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: x[k]}
		}
		return encode(buf, members, indent, level)
	case Object:
		if len(x) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, m := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, level+1)
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := encode(buf, m.Value, indent, level+1); err != nil {
				return err
			}
		}
		newline(buf, indent, level)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

func newline(buf *bytes.Buffer, indent string, level int) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indent, level))
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	// keep integral floats distinguishable from integers
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	b, _ := json.Marshal(f)
	return string(b)
}

// Unmarshal parses JSON text, additionally accepting the NaN, Infinity and
// -Infinity literals written by Marshal. Integers decode as int (or uint64
// and float64 when out of range), other numbers as float64, mappings as
// map[string]any and arrays as []any.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(replaceNonFinite(data)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after document", ErrInvalidFile)
	}

	v, err := decodeValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return v, nil
}

// UnmarshalMap is Unmarshal for documents whose root must be a mapping
func UnmarshalMap(data []byte) (map[string]any, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root must be a mapping, got %T", ErrInvalidFile, v)
	}
	return m, nil
}

// Non-finite literals are not JSON. Outside strings they are rewritten to
// marker strings before decoding and turned back into floats afterwards.
var nonFinite = []struct {
	literal string
	marker  string
	value   float64
}{
	{literal: "-Infinity", marker: "\x00-Infinity", value: math.Inf(-1)},
	{literal: "Infinity", marker: "\x00Infinity", value: math.Inf(1)},
	{literal: "NaN", marker: "\x00NaN", value: math.NaN()},
}

func replaceNonFinite(data []byte) []byte {
	var (
		out      []byte
		last     int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		if c != '-' && c != 'I' && c != 'N' {
			continue
		}
		for _, nf := range nonFinite {
			end := i + len(nf.literal)
			if !bytes.HasPrefix(data[i:], []byte(nf.literal)) || (end < len(data) && isWordByte(data[end])) {
				continue
			}
			marker, _ := json.Marshal(nf.marker)
			out = append(out, data[last:i]...)
			out = append(out, marker...)
			last = end
			i = end - 1
			break
		}
	}
	if last == 0 {
		return data
	}
	return append(out, data[last:]...)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '+' || c == '-' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decodeValue(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			dv, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			x[k] = dv
		}
		return x, nil
	case []any:
		for i, item := range x {
			dv, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			x[i] = dv
		}
		return x, nil
	case json.Number:
		return decodeNumber(x)
	case string:
		for _, nf := range nonFinite {
			if x == nf.marker {
				return nf.value, nil
			}
		}
		return x, nil
	}
	return v, nil
}

func decodeNumber(n json.Number) (any, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s", s)
	}
	return f, nil
}
