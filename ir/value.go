package ir

import (
	"reflect"

	"cogentcore.org/core/math32"
)

// Literal values are plain Go values:
//
//	bool            -> bool
//	int             -> int
//	float32         -> float
//	math32.Vector2  -> float2
//	math32.Vector3  -> float3
//	math32.Vector4  -> float4
//	math32.Matrix4  -> float4x4
//	[]int           -> int[]
//
// Configuration entries may additionally hold strings.

// SignatureOf returns the signature of a literal's native type,
// or "" when the value has no type table representation.
func SignatureOf(v any) string {
	switch v.(type) {
	case bool:
		return SigBool
	case int:
		return SigInt
	case float32:
		return SigFloat
	case math32.Vector2:
		return SigFloat2
	case math32.Vector3:
		return SigFloat3
	case math32.Vector4:
		return SigFloat4
	case math32.Matrix4:
		return SigFloat4x4
	case []int:
		return SigIntArray
	default:
		return ""
	}
}

// NullValue returns the poison placeholder used for an unset socket of
// the given signature.
func NullValue(sig string) any {
	nan := math32.NaN()
	switch sig {
	case SigBool:
		return false
	case SigInt:
		return -1
	case SigFloat:
		return nan
	case SigFloat2:
		return math32.Vector2{X: nan, Y: nan}
	case SigFloat3:
		return math32.Vector3{X: nan, Y: nan, Z: nan}
	case SigFloat4:
		return math32.Vector4{X: nan, Y: nan, Z: nan, W: nan}
	case SigFloat4x4:
		return math32.Matrix4{}
	case SigIntArray:
		return []int{}
	default:
		return nil
	}
}

// NormalizeValue maps decoded values (float64, int64, []any, ...) onto
// the literal representation. Unsupported values are returned unchanged.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case float64:
		return float32(x)
	case int64:
		return int(x)
	case int32:
		return int(x)
	case uint64:
		return int(x)
	}
	return v
}

// ConvertValue converts a literal to the target signature without
// synthesizing nodes. The conversions are: int<->float (float->int rounds
// half to even), bool->int, bool->float, any scalar broadcast into a
// vector, and vector widening with zero lanes. It reports false when the
// pair is not directly convertible; int->bool and float->bool are among
// those and go through conversion nodes.
func ConvertValue(v any, to string) (any, bool) {
	if v == nil {
		return NullValue(to), true
	}

	switch x := v.(type) {
	case int:
		switch to {
		case SigInt:
			return x, true
		case SigBool:
			return nil, false
		}
		return convertScalar(float32(x), to)

	case float32:
		switch to {
		case SigInt:
			return int(math32.RoundToEven(x)), true
		case SigBool:
			return nil, false
		}
		return convertScalar(x, to)

	case bool:
		if to == SigBool {
			return x, true
		}
		if to == SigInt {
			if x {
				return 1, true
			}
			return 0, true
		}
		var f float32
		if x {
			f = 1
		}
		return convertScalar(f, to)

	case math32.Vector2:
		switch to {
		case SigFloat2:
			return x, true
		case SigFloat3:
			return math32.Vector3{X: x.X, Y: x.Y}, true
		case SigFloat4:
			return math32.Vector4{X: x.X, Y: x.Y}, true
		}

	case math32.Vector3:
		switch to {
		case SigFloat3:
			return x, true
		case SigFloat4:
			return math32.Vector4{X: x.X, Y: x.Y, Z: x.Z}, true
		}
	}

	if SignatureOf(v) == to {
		return v, true
	}
	return v, false
}

// convertScalar handles float and broadcast targets for a numeric scalar.
func convertScalar(f float32, to string) (any, bool) {
	switch to {
	case SigFloat:
		return f, true
	case SigFloat2:
		return math32.Vector2{X: f, Y: f}, true
	case SigFloat3:
		return math32.Vector3{X: f, Y: f, Z: f}, true
	case SigFloat4:
		return math32.Vector4{X: f, Y: f, Z: f, W: f}, true
	}
	return f, false
}

// ValuesEqual reports whether two literals are identical. NaN lanes are
// never equal.
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
