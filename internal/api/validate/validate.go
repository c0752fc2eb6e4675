// Package validate holds request-level input checks and text sanitation
// for values that end up stored and echoed back to the dashboard.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/homeboard/homeboard/internal/model"
)

var (
	tagRx        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRx = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeText strips HTML tags and control characters from a single-line
// form value, collapses runs of spaces, and trims the result.
func SanitizeText(v string) string {
	v = tagRx.ReplaceAllString(v, "")
	v = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
	v = whitespaceRx.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

// SanitizeRawArgs sanitizes every value of a raw widget submission in place
// and drops keys whose values all sanitize to empty.
func SanitizeRawArgs(raw model.RawArgs) model.RawArgs {
	out := make(model.RawArgs, len(raw))
	for key, values := range raw {
		clean := make(model.StringList, 0, len(values))
		for _, v := range values {
			if s := SanitizeText(v); s != "" {
				clean = append(clean, s)
			}
		}
		if len(clean) > 0 {
			out[key] = clean
		}
	}
	return out
}

// TabName validates a tab display name. An absent name is accepted as the
// empty string; the dashboard renders an unnamed tab.
func TabName(v string) error {
	if len(v) > 100 {
		return fmt.Errorf("tab name exceeds 100 characters")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Page parses the 1-based page query parameter. A missing or non-positive
// value is an error; page fetches have no default page.
func Page(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("page is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("page must be a positive integer")
	}
	return n, nil
}
