package vector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/array"
)

// getStringValue extracts a string value from an Arrow column at a given index
func getStringValue(col interface{}, idx int) (string, error) {
	switch c := col.(type) {
	case *array.String:
		if c.IsNull(idx) {
			return "", nil
		}
		return c.Value(idx), nil
	case *array.LargeString:
		if c.IsNull(idx) {
			return "", nil
		}
		return c.Value(idx), nil
	case *array.Binary:
		if c.IsNull(idx) {
			return "", nil
		}
		return string(c.Value(idx)), nil
	case *array.LargeBinary:
		if c.IsNull(idx) {
			return "", nil
		}
		return string(c.Value(idx)), nil
	default:
		return "", fmt.Errorf("unsupported column type for string conversion: %T", col)
	}
}

// getFloat64Value extracts a float64 value from an Arrow column at a given index
func getFloat64Value(col interface{}, idx int) (float64, error) {
	switch c := col.(type) {
	case *array.Float64:
		if c.IsNull(idx) {
			return 0, fmt.Errorf("null value")
		}
		return c.Value(idx), nil
	case *array.Float32:
		if c.IsNull(idx) {
			return 0, fmt.Errorf("null value")
		}
		return float64(c.Value(idx)), nil
	case *array.Int64:
		if c.IsNull(idx) {
			return 0, fmt.Errorf("null value")
		}
		return float64(c.Value(idx)), nil
	case *array.Int32:
		if c.IsNull(idx) {
			return 0, fmt.Errorf("null value")
		}
		return float64(c.Value(idx)), nil
	default:
		return 0, fmt.Errorf("unsupported column type for float conversion: %T", col)
	}
}

// getColumnValue extracts a value from an Arrow column at a given index
func getColumnValue(col interface{}, idx int) (interface{}, error) {
	switch c := col.(type) {
	case *array.Float64:
		if c.IsNull(idx) {
			return nil, nil
		}
		return c.Value(idx), nil
	case *array.Float32:
		if c.IsNull(idx) {
			return nil, nil
		}
		return float64(c.Value(idx)), nil
	case *array.Int64:
		if c.IsNull(idx) {
			return nil, nil
		}
		return c.Value(idx), nil
	case *array.Int32:
		if c.IsNull(idx) {
			return nil, nil
		}
		return int64(c.Value(idx)), nil
	case *array.String:
		if c.IsNull(idx) {
			return nil, nil
		}
		return c.Value(idx), nil
	case *array.LargeString:
		if c.IsNull(idx) {
			return nil, nil
		}
		return c.Value(idx), nil
	case *array.Boolean:
		if c.IsNull(idx) {
			return nil, nil
		}
		return c.Value(idx), nil
	case *array.Binary:
		if c.IsNull(idx) {
			return nil, nil
		}
		return string(c.Value(idx)), nil
	case *array.LargeBinary:
		if c.IsNull(idx) {
			return nil, nil
		}
		return string(c.Value(idx)), nil
	default:
		return nil, fmt.Errorf("unsupported column type: %T", col)
	}
}
