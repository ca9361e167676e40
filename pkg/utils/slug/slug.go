package slug

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
)

var ErrEmpty = errors.New("slug: nothing to slugify")

const maxAttempts = 50

// Make returns the URL slug for s.
func Make(s string) string {
	return slug.Make(s)
}

// Unique slugifies s and appends -2, -3, ... until taken reports false.
func Unique(s string, taken func(candidate string) (bool, error)) (string, error) {
	base := slug.Make(s)
	if base == "" {
		return "", ErrEmpty
	}

	candidate := base
	for i := 2; i <= maxAttempts+1; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug: no free slug for %q after %d attempts", base, maxAttempts)
}
