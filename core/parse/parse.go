package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs decodes content into T.
//
// Primitive kinds (string, bool, signed/unsigned integers, floats) are
// converted with strconv after trimming whitespace; when that fails the
// content is checked for a {"type": ..., "value": ...} envelope. Everything
// else is decoded as JSON: Markdown code fences are removed, and on failure
// the text is repaired with jsonrepair and decoded again, finally unwrapping
// any schema envelopes found inside the repaired document.
//
// Example:
//
//	type Review struct {
//	    Summary   string `json:"summary"`
//	    Sentiment string `json:"sentiment"`
//	}
//
//	review, err := parse.ParseStringAs[Review]("```json\n{summary: 'ok', sentiment: 'positive'}\n```")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(strings.TrimSpace(content), "{") {
			if unwrapped, err := unwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		err := setPrimitive(target, strings.TrimSpace(content))
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := unwrapPrimitive(content); unwrapErr == nil {
			if retryErr := setPrimitive(target, unwrapped); retryErr == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", target.Kind(), err)

	default:
		return result, decodeJSON(content, &result)
	}
}

func setPrimitive(target reflect.Value, text string) error {
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return err
		}
		target.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(text, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)
	default:
		return fmt.Errorf("unsupported kind %s", target.Kind())
	}
	return nil
}

func decodeJSON(content string, out any) error {
	content = StripCodeFence(content)

	err := json.Unmarshal([]byte(content), out)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", out, err, repairErr)
	}

	if err = json.Unmarshal([]byte(repaired), out); err == nil {
		return nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		if retryErr := json.Unmarshal([]byte(unwrapped), out); retryErr == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", out, err, repaired)
}

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// and the whitespace around it. Content without a fence is only trimmed.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		// Drop the info string ("json", "JSON", ...) on the opening line.
		if !strings.ContainsAny(content[:newline], "{[") {
			content = content[newline+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// unwrapPrimitive returns the string form of the value held by a
// {"type": ..., "value": ...} envelope.
func unwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &data); err != nil {
		return "", err
	}

	value, ok := envelopeValue(data)
	if !ok {
		return "", errNotWrapped
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprint(v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// unwrapSchemaValues rewrites a document so that every envelope is replaced
// by its value, e.g.
//
//	{"summary": {"type": "string", "value": "Good"}}  ->  {"summary": "Good"}
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	encoded, err := json.Marshal(unwrap(data))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := envelopeValue(v); ok {
			return unwrap(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrap(val)
		}
		return out
	default:
		return data
	}
}

func envelopeValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}
