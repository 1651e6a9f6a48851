package envfmt

import (
	"fmt"
	"strings"
)

// Format is an output format.
type Format int

// Supported formats.
const (
	// DotEnv renders KEY=value lines, readable by a POSIX shell and by
	// dotenv loaders.
	DotEnv Format = iota + 1
	// PhpFpm renders env[KEY] = value lines for a php-fpm pool config.
	PhpFpm
)

// Formats lists every supported format.
var Formats = []Format{DotEnv, PhpFpm}

// ParseFormat returns the format with the given name, as printed by String.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, name, strings.Join(FormatNames(), ", "))
}

func (f Format) String() string {
	switch f {
	case DotEnv:
		return "dot-env"
	case PhpFpm:
		return "php-fpm"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Render writes params as text, one line per parameter, in the order given.
// An empty list renders as an empty string.
//
// Render panics on a Format that is not one of Formats.
func (f Format) Render(params []NormalizedParameter) string {
	var b strings.Builder
	for _, p := range params {
		switch f {
		case DotEnv:
			b.WriteString(p.Name)
			b.WriteByte('=')
			b.WriteString(QuoteDotEnv(p.Value))
		case PhpFpm:
			b.WriteString("env[")
			b.WriteString(p.Name)
			b.WriteString("] = ")
			b.WriteString(QuotePhpFpm(p.Value))
		default:
			panic(fmt.Sprintf("envfmt: render %v", f))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// QuoteDotEnv returns value as it should appear on the right of = in a .env
// file.
//
// Non-empty values made only of letters, digits and _ . / : @ % + , - are
// returned unchanged. A value ending in " that has no ' is wrapped in single
// quotes, since dotenv loaders drop an escaped quote right before the closing
// one. Anything else is wrapped in double quotes, with \ " $ and ` escaped by
// a backslash. Newlines are kept as is inside the quotes.
//
// The result is always read back unchanged by a POSIX shell. godotenv and
// compatible loaders can not read back a value ending in \, a value ending in
// " that also contains ', or a \r directly before \n, which they turn into \n.
func QuoteDotEnv(value string) string {
	switch {
	case value != "" && isBare(value, "_./:@%+,-"):
		return value
	case strings.HasSuffix(value, `"`) && !strings.Contains(value, "'"):
		return "'" + value + "'"
	}
	return quote(value, `\"$`+"`")
}

// QuotePhpFpm returns value as it should appear on the right of = in a
// php-fpm pool config.
//
// Values made only of letters, digits and _ . / : @ - are returned unchanged
// unless the INI parser would read them as something else: a boolean or null
// keyword, or the name of a constant. Anything else is wrapped in double
// quotes with \ " and $ escaped by a backslash.
func QuotePhpFpm(value string) string {
	if value != "" && isBare(value, "_./:@-") && !iniKeyword(value) && !iniConstant(value) {
		return value
	}
	return quote(value, `\"$`)
}

func quote(value, escape string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		if strings.ContainsRune(escape, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func isBare(value, extra string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(extra, r):
		default:
			return false
		}
	}
	return true
}

func iniKeyword(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "on", "off", "yes", "no", "none", "null":
		return true
	}
	return false
}

// iniConstant reports whether value could name a PHP constant, which the INI
// parser substitutes in unquoted values.
func iniConstant(value string) bool {
	c := value[0]
	if !(c >= 'A' && c <= 'Z' || c == '_') {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// FormatNames returns the names of Formats, as accepted by ParseFormat.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = f.String()
	}
	return names
}
