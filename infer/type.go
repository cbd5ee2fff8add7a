package infer

import (
	"math"
	"regexp"

	"github.com/valyala/fastjson"

	"github.com/azstreams/dcrbuilder/dcr"
)

// MaxDepth bounds recursive type detection. Anything nested deeper is forced
// to dynamic. The column engine only ever looks one level down, so this guard
// matters for direct callers of Type.
const MaxDepth = 5

// Date-only, date-time with optional seconds and fractional seconds, optional
// Z or explicit UTC offset. Slash-separated, US-ordered and textual dates do
// not match on purpose: a string column is recoverable, a misdetected
// datetime column is not.
var isoDateRe = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)

// Type classifies a single JSON value into a DCR column type.
// Null maps to string: a null tells us the field exists but nothing about its
// type, and string is the safest landing spot.
func Type(v *fastjson.Value, depth int) dcr.ColumnType {
	if v == nil {
		return dcr.TypeString
	}
	if depth > MaxDepth {
		return dcr.TypeDynamic
	}

	switch v.Type() {
	case fastjson.TypeNull:
		return dcr.TypeString
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return dcr.TypeBoolean
	case fastjson.TypeNumber:
		if _, err := v.Int64(); err == nil {
			return dcr.TypeInt
		}
		// Integral values in float or exponent syntax (100.0, 1e3) are still
		// ints: classification follows the value, not the spelling.
		if f, err := v.Float64(); err == nil &&
			f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return dcr.TypeInt
		}
		return dcr.TypeReal
	case fastjson.TypeString:
		if isoDateRe.Match(v.GetStringBytes()) {
			return dcr.TypeDatetime
		}
		return dcr.TypeString
	case fastjson.TypeObject, fastjson.TypeArray:
		return dcr.TypeDynamic
	}

	return dcr.TypeString
}
