package payment

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"  0712345678 ", "254712345678"},
	}
	for _, c := range cases {
		got, err := NormalizePhone(c.in)
		if err != nil {
			t.Errorf("NormalizePhone(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhoneRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"07123",           // too short
		"2547123456789012", // too long
		"07a2345678",      // letters
		"0712 345 678",    // internal whitespace
		"25471234567",     // normalizes to 11 digits
	}
	for _, in := range bad {
		_, err := NormalizePhone(in)
		if err == nil {
			t.Errorf("NormalizePhone(%q) accepted invalid input", in)
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("NormalizePhone(%q) error = %T, want *ValidationError", in, err)
		}
	}
}
