package payment

import "strings"

// NormalizePhone converts a Kenyan mobile number into the international
// 254XXXXXXXXX form the gateway requires. Accepted inputs: "0712345678",
// "+254712345678", "254712345678" and the bare subscriber form "712345678".
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return "", &ValidationError{Field: "phone_number", Reason: "must not be empty"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "phone_number", Reason: "must contain digits only"}
		}
	}
	if len(s) < 9 || len(s) > 12 {
		return "", &ValidationError{Field: "phone_number", Reason: "must be 9 to 12 digits"}
	}

	switch {
	case strings.HasPrefix(s, "254"):
		// already international
	case strings.HasPrefix(s, "0"):
		s = "254" + s[1:]
	default:
		s = "254" + s
	}

	if len(s) != 12 {
		return "", &ValidationError{Field: "phone_number", Reason: "does not normalize to a 12-digit 254 number"}
	}
	return s, nil
}
