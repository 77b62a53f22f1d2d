package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// rawRecordFieldMap caches JSON tag -> struct field index mappings
var (
	rawRecordFieldMap     map[string]int
	rawRecordFieldMapOnce sync.Once
)

func getRawRecordFieldMap() map[string]int {
	rawRecordFieldMapOnce.Do(func() {
		t := reflect.TypeOf(RawRecord{})
		rawRecordFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			rawRecordFieldMap[name] = i
		}
	})
	return rawRecordFieldMap
}

var jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// UnmarshalJSON accepts both native JSON types and the all-strings rows that
// spreadsheet exports produce ("cubes": "4", "archetype certain": "yes").
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias RawRecord
	a := (*Alias)(r)

	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getRawRecordFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		err := json.Unmarshal(rawVal, ptr.Interface())
		if err == nil {
			fv.Set(ptr.Elem())
			continue
		}
		// Enum fields parse themselves; coercion would silently zero them.
		if ptr.Type().Implements(jsonUnmarshalerType) {
			return fmt.Errorf("flex unmarshal %q: %w", key, err)
		}

		s := string(rawVal)
		if len(rawVal) > 1 && rawVal[0] == '"' {
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
		} else if fv.Kind() == reflect.String {
			return fmt.Errorf("flex unmarshal %q: want a string, got %s", key, s)
		}
		if err := coerceStringToField(fv, s); err != nil {
			return fmt.Errorf("flex unmarshal %q: %w", key, err)
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := ParseCubes(s)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Bool:
		b, err := parseFlexBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.String:
		fv.SetString(s)
	}
	return nil
}

func parseFlexBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %q", s)
	}
	return b, nil
}

// ParseFlexBool is the boolean coercion used for spreadsheet columns.
func ParseFlexBool(s string) (bool, error) {
	return parseFlexBool(strings.TrimSpace(s))
}
