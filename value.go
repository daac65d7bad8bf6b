package pardon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"github.com/go-json-experiment/json"
)

// ScalarType is the declared conversion target for a scalar schema, per
// §4.4.1: one of "" (untyped), "null", "string", "number", "boolean", or
// "bigint".
type ScalarType string

const (
	TypeUntyped ScalarType = ""
	TypeNull    ScalarType = "null"
	TypeString  ScalarType = "string"
	TypeNumber  ScalarType = "number"
	TypeBoolean ScalarType = "boolean"
	TypeBigInt  ScalarType = "bigint"
)

// fuzzyEqual implements the three-tier equality used by EvaluationScope.define
// (§4.2): identical values, string-equal scalars, or canonical-ID hash
// equality for structured values.
func fuzzyEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	if sa, ok := stringable(a); ok {
		if sb, ok := stringable(b); ok {
			return sa == sb
		}
	}
	return valueID(a) == valueID(b)
}

// stringable returns a canonical string form for comparable scalars.
func stringable(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case *big.Int:
		return t.String(), true
	case nil:
		return "null", true
	default:
		return "", false
	}
}

// valueID computes a stable hash over a value's canonical JSON encoding,
// used to compare structured (object/array) values for the fuzzy-equality
// and define-is-monotonic invariants (§3.3 invariant 2, §8 invariant 2).
func valueID(v any) string {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// convertScalar coerces a resolved/rendered raw value to the scalar's
// declared type, per §4.4.1 step 4 / render step 4.
func convertScalar(raw any, typ ScalarType) (any, error) {
	switch typ {
	case TypeUntyped:
		return raw, nil
	case TypeNull:
		return nil, nil
	case TypeString:
		return toStringValue(raw), nil
	case TypeBoolean:
		return toBoolValue(raw)
	case TypeNumber:
		return toNumberValue(raw)
	case TypeBigInt:
		return toBigIntValue(raw)
	default:
		return raw, nil
	}
}

func toStringValue(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	s := string(data)
	// Unwrap quoted JSON strings produced for non-string raw scalars.
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if json.Unmarshal(data, &unquoted) == nil {
			return unquoted
		}
	}
	return s
}

func toBoolValue(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not boolean", ErrNoValidConfigurations, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: cannot convert %T to boolean", ErrNoValidConfigurations, raw)
	}
}

func toNumberValue(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrNoValidConfigurations, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to number", ErrNoValidConfigurations, raw)
	}
}

func toBigIntValue(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrNoValidConfigurations, v)
		}
		return n, nil
	case float64:
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to bigint", ErrNoValidConfigurations, raw)
	}
}
