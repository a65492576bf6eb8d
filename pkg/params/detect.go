package params

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// AutoCategories are the categories inferred from a parameter name prefix
var AutoCategories = []string{"buy", "sell", "enter", "exit", "protection"}

// Named pairs a bound parameter with its name
type Named struct {
	Name      string
	Parameter Parameter
}

var parameterType = reflect.TypeOf((*Parameter)(nil)).Elem()

// Detect binds names to every parameter field of strategy and returns those
// belonging to category: parameters whose category equals it, or whose name
// starts with "<category>_" and that have no explicit category.
// strategy must be a struct or a pointer to one; embedded structs are searched.
func Detect(strategy any, category string) ([]Named, error) {
	all, err := collect(strategy)
	if err != nil {
		return nil, err
	}

	prefix := category + "_"
	var out []Named
	for _, n := range all {
		c := n.Parameter.Category()
		prefixed := strings.HasPrefix(n.Name, prefix)
		if prefixed && c != "" && c != category {
			return nil, configErrorf(n.Parameter.base().kind,
				"inconclusive parameter name %s, category: %s", n.Name, c)
		}
		if c == category || (prefixed && c == "") {
			out = append(out, n)
		}
	}
	return out, nil
}

// DetectAll groups the parameters of strategy by category. Categories are the
// explicit ones plus AutoCategories; parameters matching none are omitted.
func DetectAll(strategy any) (map[string][]Named, error) {
	all, err := collect(strategy)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := append([]string(nil), AutoCategories...)
	for _, c := range AutoCategories {
		seen[c] = true
	}
	for _, n := range all {
		if c := n.Parameter.Category(); c != "" && !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	result := make(map[string][]Named)
	for _, c := range categories {
		found, err := Detect(strategy, c)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			result[c] = found
		}
	}
	return result, nil
}

// collect binds and returns all parameter fields in declaration order
func collect(strategy any) ([]Named, error) {
	v := reflect.ValueOf(strategy)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("strategy is a nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("strategy must be a struct, got %s", v.Kind())
	}

	var out []Named
	walk(v, &out)
	return out, nil
}

func walk(v reflect.Value, out *[]Named) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		if !field.IsExported() {
			continue
		}
		if p, ok := asParameter(fv); ok {
			name := SnakeCase(field.Name)
			p.base().bind(name)
			*out = append(*out, Named{Name: name, Parameter: p})
			continue
		}
		if field.Anonymous {
			embedded := fv
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				walk(embedded, out)
			}
		}
	}
}

func asParameter(fv reflect.Value) (Parameter, bool) {
	switch {
	case fv.Kind() == reflect.Pointer && fv.Type().Implements(parameterType):
		if fv.IsNil() {
			return nil, false
		}
		return fv.Interface().(Parameter), true
	case fv.Kind() == reflect.Interface && fv.Type().Implements(parameterType):
		if fv.IsNil() {
			return nil, false
		}
		p, ok := fv.Interface().(Parameter)
		return p, ok
	case fv.Kind() == reflect.Struct && fv.CanAddr() && fv.Addr().Type().Implements(parameterType):
		return fv.Addr().Interface().(Parameter), true
	}
	return nil, false
}

// SnakeCase converts a Go field name to the parameter name: BuyRSIPeriod -> buy_rsi_period
func SnakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			sb.WriteRune(r)
			continue
		}
		if i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteRune('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
