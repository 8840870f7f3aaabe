// Package redact implements the masked projection of intake PII. Phone,
// SSN and date of birth are the sensitive field set. Masking is
// deterministic: the same input always produces the same output, with only
// the trailing identifying portion preserved. Names, emails and addresses
// are intentionally never masked.
package redact

// Field selects a masking rule.
type Field int

const (
	Phone Field = iota
	SSN
	DOB
)

// empty placeholder shown when a sensitive field has no value
const emptyValue = "—"

// Mask applies the field's masking rule:
//
//	phone  555-123-4567 -> ***-***-4567
//	ssn    123-45-6789  -> ***-**-6789
//	dob    1978-06-22   -> **/**/1978
func Mask(value string, field Field) string {
	if value == "" {
		return emptyValue
	}
	switch field {
	case Phone:
		return "***-***-" + lastN(value, 4)
	case SSN:
		return "***-**-" + lastN(value, 4)
	case DOB:
		year := value
		for i := 0; i < len(value); i++ {
			if value[i] == '-' {
				year = value[:i]
				break
			}
		}
		return "**/**/" + year
	default:
		return value
	}
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
