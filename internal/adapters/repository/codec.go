package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Codec encodes one composite field value to its stored string form. The
// matching decode lives in the per-entity record decoder, so a round trip
// through Encode and the decoder must be lossless.
type Codec struct {
	Encode func(value interface{}) (string, error)
}

// JSONCodec stores object- and array-shaped values as their JSON encoding
func JSONCodec() Codec {
	return Codec{
		Encode: func(value interface{}) (string, error) {
			if value == nil {
				return "", nil
			}
			encoded, err := json.Marshal(value)
			if err != nil {
				return "", fmt.Errorf("encode json field: %w", err)
			}
			return string(encoded), nil
		},
	}
}

// CommaListCodec stores flat string lists comma-joined
func CommaListCodec() Codec {
	return Codec{
		Encode: func(value interface{}) (string, error) {
			if value == nil {
				return "", nil
			}
			switch list := value.(type) {
			case []string:
				return strings.Join(list, ","), nil
			case []interface{}:
				parts := make([]string, len(list))
				for i, item := range list {
					str, ok := item.(string)
					if !ok {
						return "", fmt.Errorf("comma list element %d is not a string", i)
					}
					parts[i] = str
				}
				return strings.Join(parts, ","), nil
			case string:
				return list, nil
			default:
				return "", fmt.Errorf("cannot encode %T as comma list", value)
			}
		},
	}
}

// SplitCommaList is the decode side of CommaListCodec
func SplitCommaList(stored string) []string {
	if stored == "" {
		return []string{}
	}
	return strings.Split(stored, ",")
}

// formatScalar renders a non-composite value in its stored string form
func formatScalar(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		// JSON numbers decode as float64; integral values stay integral
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot encode %T as record field", value)
	}
}
