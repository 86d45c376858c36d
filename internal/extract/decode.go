package extract

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decode maps a recovered object onto out. Models routinely send numbers as strings or
// floats, lists where one value was asked for, or "N/A" for a number. Input is weakly typed,
// floats headed for int fields are rounded, and scalars or optional objects that still cannot
// be read are reset to their zero value. Every reset is described in the returned notes.
// Objects, lists and maps of the wrong shape still fail the decode.
func decode(obj map[string]any, out any) ([]string, error) {
	var notes []string

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       lenient(&notes),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(obj); err != nil {
		return nil, err
	}
	return notes, nil
}

func lenient(notes *[]string) mapstructure.DecodeHookFuncType {
	reset := func(data any, to reflect.Type, zero any) (any, error) {
		*notes = append(*notes, fmt.Sprintf("%v could not be read as %s", data, to))
		return zero, nil
	}

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		switch to.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			f, ok := number(data)
			if !ok {
				return reset(data, to, 0)
			}
			return int(math.Round(f)), nil

		case reflect.Float32, reflect.Float64:
			f, ok := number(data)
			if !ok {
				return reset(data, to, 0.0)
			}
			return f, nil

		case reflect.String:
			s, ok := text(data)
			if !ok {
				return reset(data, to, "")
			}
			return s, nil

		case reflect.Ptr:
			// Optional nested objects such as subscores.
			if to.Elem().Kind() == reflect.Struct && from.Kind() != reflect.Map {
				return reset(data, to, nil)
			}
		}

		return data, nil
	}
}

// number reads JSON scalars as a float. Empty strings are zero.
func number(data any) (float64, bool) {
	var f float64

	switch v := data.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// text reads JSON scalars as a string. A list of scalars is joined with commas.
func text(data any) (string, bool) {
	switch v := data.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := text(item)
			if !ok {
				return "", false
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}
