package record

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultLowThreshold is the quality percentage below which a record is "BAIXA".
const DefaultLowThreshold = 96.0

var (
	decimalQuality = regexp.MustCompile(`^\d{1,2},\d$`)
	integerQuality = regexp.MustCompile(`^\d{1,3}$`)
	nonDigit       = regexp.MustCompile(`\D`)
)

// ParseQualityInput validates raw form input ("94,5" or "100") and returns
// the stored representation ("94,5%").
func ParseQualityInput(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !decimalQuality.MatchString(raw) && !integerQuality.MatchString(raw) {
		return "", ErrInvalidQuality
	}
	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || value < 0 || value > 100 {
		return "", ErrInvalidQuality
	}
	return FormatQuality(value), nil
}

// FormatQuality renders a percentage with one decimal digit, a comma
// separator and a trailing '%'.
func FormatQuality(value float64) string {
	s := strconv.FormatFloat(value, 'f', 1, 64)
	return strings.Replace(s, ".", ",", 1) + "%"
}

// QualityValue parses a stored quality string. Malformed input yields 0.
func QualityValue(stored string) float64 {
	clean := strings.ReplaceAll(stored, "%", "")
	clean = strings.TrimSpace(strings.ReplaceAll(clean, ",", "."))
	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return value
}

// IsLow reports whether a stored quality is below threshold.
func IsLow(stored string, threshold float64) bool {
	return QualityValue(stored) < threshold
}

// QualityInput returns the stored quality as the form shows it when editing.
func QualityInput(stored string) string {
	return strings.ReplaceAll(stored, "%", "")
}

// MaskQuality applies the XX,X keystroke mask to raw field content. The
// second return value is true once three digits are present, which is when
// the form moves focus on to the occurrence field.
func MaskQuality(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) > 3 {
		digits = digits[:3]
	}
	if len(digits) == 3 {
		return digits[:2] + "," + digits[2:], true
	}
	return digits, false
}
