package util

import (
	"math"
	"strconv"
)

func IndentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}

// FormatValue renders a value with the given number of decimals, using placeholder for NaN
func FormatValue(v float64, decimals int, placeholder string) string {
	if math.IsNaN(v) {
		return placeholder
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
