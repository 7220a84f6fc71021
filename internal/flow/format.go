package flow

import (
	"fmt"
	"math"
	"strconv"

	"github.com/homequote/homequote/internal/catalog"
)

// FormatAnswer renders an accepted value the way it is echoed back in the
// chat transcript: booleans as yes/no, numbers with their unit, select values
// by their label.
func FormatAnswer(v Value, q *catalog.Question) string {
	switch q.Type {
	case catalog.TypeBoolean:
		if v.IsTrue() {
			return "Yes"
		}
		return "No"

	case catalog.TypeNumber:
		n := v.Number()
		var s string
		if n == math.Trunc(n) {
			s = strconv.FormatFloat(n, 'f', -1, 64)
		} else {
			s = strconv.FormatFloat(n, 'f', 2, 64)
		}
		if q.Unit != "" {
			return fmt.Sprintf("%s %s", s, q.Unit)
		}
		return s

	case catalog.TypeSelect:
		for _, opt := range q.Options {
			if opt.Value == v.Text() {
				return opt.Label
			}
		}
		return v.Text()

	default:
		return v.Text()
	}
}
