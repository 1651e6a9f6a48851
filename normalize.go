package envfmt

import (
	"fmt"
	"sort"
	"strings"
)

// NormalizedParameter is a parameter whose name has been turned into an
// identifier usable in the output formats.
type NormalizedParameter struct {
	Name  string
	Value string
}

// Normalize turns the parameter name key, listed under prefix, into an
// identifier:
//
//	Normalize("/app/prod/", "/app/prod/db/host") // DB_HOST
//
// The prefix may be given with or without leading and trailing slashes. Path
// separators and any other character that is not a letter, digit or
// underscore become underscores, and the result is upper-cased. An
// identifier that would start with a digit is prefixed with an underscore.
func Normalize(prefix, key string) (string, error) {
	prefix = keyPrefix(prefix)
	if strings.TrimRight(key, "/") == strings.TrimRight(prefix, "/") {
		return "", fmt.Errorf("%w: %q", ErrEmptyIdentifier, key)
	}
	if !strings.HasPrefix(key, prefix) {
		return "", fmt.Errorf("%w: %q is not under %q", ErrMalformedKey, key, prefix)
	}
	rest := strings.Trim(strings.TrimPrefix(key, prefix), "/")
	if rest == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyIdentifier, key)
	}

	var b strings.Builder
	b.Grow(len(rest) + 1)
	if rest[0] >= '0' && rest[0] <= '9' {
		b.WriteByte('_')
	}
	for _, r := range rest {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String(), nil
}

// NormalizeAll normalizes every parameter and sorts the result by
// identifier. It fails on the first name that cannot be normalized, or when
// two names end up with the same identifier.
func NormalizeAll(prefix string, params []Parameter) ([]NormalizedParameter, error) {
	out := make([]NormalizedParameter, 0, len(params))
	seen := make(map[string]string, len(params))
	for _, p := range params {
		id, err := Normalize(prefix, p.Name)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s from %q and %q", ErrDuplicateIdentifier, id, other, p.Name)
		}
		seen[id] = p.Name
		out = append(out, NormalizedParameter{Name: id, Value: p.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// keyPrefix returns prefix with exactly one leading and one trailing slash.
func keyPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}
