package wire

import "strings"

// FormatDescriptor describes one registered message type: the format
// string used to render it, its category, and the ordered list of
// parameter keys/sizes that make up its payload.
type FormatDescriptor struct {
	Key            MessageKey
	MessageHash    MessageKey
	FormatString   string
	Category       uint32
	Parameters     []ParameterKey
	ParameterSizes []int

	// MessageSize is the sum of ParameterSizes, i.e. the number of payload
	// bytes following the key (and ordering index, if enabled).
	MessageSize int
}

// NewFormatDescriptor builds a descriptor and computes MessageSize and
// MessageHash. It panics if the number of "{}" placeholders in formatString
// does not match len(parameters).
func NewFormatDescriptor(key MessageKey, formatString string, category uint32, parameters []ParameterKey, parameterSizes []int) FormatDescriptor {
	if CountParameters(formatString) != len(parameters) {
		panic("lal: format string parameter count does not match parameter key count")
	}
	size := 0
	for _, s := range parameterSizes {
		size += s
	}
	return FormatDescriptor{
		Key:            key,
		MessageHash:    HashFormatString(formatString),
		FormatString:   formatString,
		Category:       category,
		Parameters:     parameters,
		ParameterSizes: parameterSizes,
		MessageSize:    size,
	}
}

// CountParameters counts occurrences of "{}" in s.
func CountParameters(s string) int {
	return strings.Count(s, "{}")
}

// Matches reports whether the descriptor's parameter list matches params
// positionally, treating a zero ParameterKey in params as a wildcard that
// matches any position. len(params) must equal len(d.Parameters).
func (d *FormatDescriptor) Matches(params []ParameterKey) bool {
	if len(params) != len(d.Parameters) {
		return false
	}
	for i, p := range params {
		if p == 0 {
			continue
		}
		if p != d.Parameters[i] {
			return false
		}
	}
	return true
}
