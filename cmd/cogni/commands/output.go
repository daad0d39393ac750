package commands

import (
	"encoding/json"
	"fmt"
)

// formatValue renders scalars as is and collections as compact JSON.
func formatValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string, bool, int, int64, float64:
		return fmt.Sprint(v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
