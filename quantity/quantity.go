package quantity

// Suffixes lists the BinarySI and DecimalSI suffixes accepted after the
// numeric part of a quantity.
var Suffixes = []string{
	"n", "u", "m", "k", "M", "G", "T", "P", "E",
	"Ki", "Mi", "Gi", "Ti", "Pi", "Ei",
}

var suffixSet = func() map[string]bool {
	m := make(map[string]bool, len(Suffixes))
	for _, s := range Suffixes {
		m[s] = true
	}

	return m
}()

// IsValid reports whether s is a syntactically valid Kubernetes quantity.
func IsValid(s string) bool {
	i := 0

	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := countDigits(s[i:])
	i += intDigits

	fracDigits := 0

	if i < len(s) && s[i] == '.' {
		i++
		fracDigits = countDigits(s[i:])
		i += fracDigits
	}

	if intDigits == 0 && fracDigits == 0 {
		return false
	}

	rest := s[i:]
	if rest == "" || suffixSet[rest] {
		return true
	}

	return isExponent(rest)
}

// isExponent reports whether s is "e" or "E", an optional sign, and at
// least one digit, with nothing after.
func isExponent(s string) bool {
	if s == "" || (s[0] != 'e' && s[0] != 'E') {
		return false
	}

	s = s[1:]
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}

	n := countDigits(s)

	return n > 0 && n == len(s)
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}

	return n
}
