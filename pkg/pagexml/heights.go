package pagexml

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ocralign/pagealign/pkg/layout"
)

var numberPattern = regexp.MustCompile(`\d+`)

// parseHeights recovers line heights from the custom attribute. Current
// documents carry a structured heights_v2:[ascent,descent] token; older
// documents embedded raw numbers in one of three legacy encodings,
// recovered by scanning the attribute for integer runs:
//
//   - 4 numbers [a,b,c,d]: ascent = a, descent = c
//   - 3 numbers [a,b,c]: ascent = b, descent = c - a
//   - 2 numbers: taken as (ascent, descent) directly
//
// Returns nil when the attribute carries no height information at all.
func parseHeights(custom string) (*layout.Heights, error) {
	if strings.Contains(custom, "heights_v2") {
		for _, word := range strings.Fields(custom) {
			if !strings.Contains(word, "heights_v2") {
				continue
			}
			_, payload, _ := strings.Cut(word, ":")
			var pair []float64
			if err := json.Unmarshal([]byte(payload), &pair); err != nil || len(pair) != 2 {
				return nil, fmt.Errorf("%w: heights_v2 token %q", layout.ErrMalformedDocument, word)
			}
			return &layout.Heights{Ascent: pair[0], Descent: pair[1]}, nil
		}
		return nil, fmt.Errorf("%w: heights_v2 token split across fields", layout.ErrMalformedDocument)
	}

	if !strings.Contains(custom, "heights") {
		return nil, nil
	}

	numbers := numberPattern.FindAllString(custom, -1)
	values := make([]float64, len(numbers))
	for i, n := range numbers {
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: height value %q", layout.ErrMalformedDocument, n)
		}
		values[i] = v
	}

	switch {
	case len(values) == 4:
		return &layout.Heights{Ascent: values[0], Descent: values[2]}, nil
	case len(values) == 3:
		return &layout.Heights{Ascent: values[1], Descent: values[2] - values[0]}, nil
	case len(values) >= 2:
		return &layout.Heights{Ascent: values[0], Descent: values[1]}, nil
	}
	return nil, nil
}

// formatHeights renders the structured custom attribute token. Writing
// always emits this encoding, never the legacy ones.
func formatHeights(h *layout.Heights) string {
	return fmt.Sprintf("heights_v2:[%.1f,%.1f]", h.Ascent, h.Descent)
}
