package redact

import "testing"

func TestMaskPhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"555-123-4567", "***-***-4567"},
		{"5551234567", "***-***-4567"},
		{"4567", "***-***-4567"},
		{"", "—"},
	}
	for _, c := range cases {
		if got := Mask(c.in, Phone); got != c.want {
			t.Errorf("Mask(%q, Phone) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskSSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"123-45-6789", "***-**-6789"},
		{"123456789", "***-**-6789"},
		{"", "—"},
	}
	for _, c := range cases {
		if got := Mask(c.in, SSN); got != c.want {
			t.Errorf("Mask(%q, SSN) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskDOB(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1978-06-22", "**/**/1978"},
		{"1990-01-01", "**/**/1990"},
		{"", "—"},
	}
	for _, c := range cases {
		if got := Mask(c.in, DOB); got != c.want {
			t.Errorf("Mask(%q, DOB) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Mask("555-123-4567", Phone); got != "***-***-4567" {
			t.Fatalf("run %d: %q", i, got)
		}
	}
}
