package notify

import (
	"fmt"
	"regexp"

	"github.com/gigforge/gigforge/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9]*)\}`)

// Render resolves every {placeholder} token in the template from the
// payload. An unresolved placeholder is a data-quality defect, not a
// crash: the token is left in the output literally.
func Render(text string, payload domain.Payload) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		v, ok := payload[key]
		if !ok || v == nil {
			return token
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				return token
			}
			return val
		default:
			return fmt.Sprintf("%v", val)
		}
	})
}
