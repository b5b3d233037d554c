// Package validate checks struct fields against `validate` tags.
//
// Rules are comma separated; the first failing rule per field wins.
//
//	required         field must not be zero/blank
//	nullable         skip remaining rules when the field is empty
//	email            address shape
//	min=N / max=N    string: rune length, number: value
//	gte=N / lte=N    numeric bounds
//	in=A|B|C         value must be one of the pipe separated items
//	date             YYYY-MM-DD
//	confirmed        equals the sibling field tagged <name>_confirmation
//
// Example:
//
//	type Input struct {
//	    Platform string `json:"platform" validate:"required,in=PS3|PS4|PS5"`
//	    Stock    int    `json:"stock"    validate:"gte=0,lte=100000"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Struct validates v (a struct or pointer to one) and returns
// field name → message. An empty map means valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := jsonName(field)
		rules := strings.Split(tag, ",")

		if contains(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if msg := apply(strings.TrimSpace(rule), name, value, rv); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func apply(rule, field string, v, parent reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	raw := fmt.Sprint(v.Interface())

	switch key {
	case "", "nullable":
		return ""

	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}

	case "min", "max":
		n, _ := strconv.ParseFloat(param, 64)
		if isNumeric(v) {
			if key == "min" && toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
			if key == "max" && toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
			return ""
		}
		length := float64(len([]rune(raw)))
		if key == "min" && length < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		if key == "max" && length > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}

	case "gte":
		n, _ := strconv.ParseFloat(param, 64)
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}

	case "lte":
		n, _ := strconv.ParseFloat(param, 64)
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}

	case "in":
		for _, allowed := range strings.Split(param, "|") {
			if raw == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)

	case "date":
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return fmt.Sprintf("The %s is not a valid date (YYYY-MM-DD).", field)
		}

	case "confirmed":
		other, ok := siblingByJSONName(parent, field+"_confirmation")
		if !ok || fmt.Sprint(other.Interface()) != raw {
			return fmt.Sprintf("The %s confirmation does not match.", field)
		}

	default:
		return fmt.Sprintf("The %s has an unknown validation rule %q.", field, key)
	}
	return ""
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return v.IsZero()
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprint(v.Interface()), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func siblingByJSONName(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func contains(rules []string, want string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == want {
			return true
		}
	}
	return false
}
