package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Tel Aviv", "Tel Aviv"},
		{"  Tel   Aviv  ", "Tel Aviv"},
		{"Tel\tAviv\nPort", "Tel Aviv Port"},
	}

	for _, c := range cases {
		if got := TrimAndNormalize(c.in); got != c.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdentity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" Renter-42 ", "renter-42"},
		{"USER 7", "user7"},
		{"", ""},
	}

	for _, c := range cases {
		if got := NormalizeIdentity(c.in); got != c.want {
			t.Errorf("NormalizeIdentity(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeLocation_PreservesCase(t *testing.T) {
	if got := NormalizeLocation("  Haifa  Bay "); got != "Haifa Bay" {
		t.Errorf("expected 'Haifa Bay', got %q", got)
	}
}
