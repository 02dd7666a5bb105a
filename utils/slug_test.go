package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Summer Trip 2024", "summer-trip-2024"},
		{"  Hello,   World!  ", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"Ümlauts & Friends", "ümlauts-friends"},
		{"---", ""},
		{"", ""},
		{"IMG_0042", "img-0042"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRandomSlugSuffix(t *testing.T) {
	a := RandomSlugSuffix()
	b := RandomSlugSuffix()
	if len(a) != 5 || len(b) != 5 {
		t.Errorf("suffix lengths %d/%d, want 5", len(a), len(b))
	}
	if a == b {
		t.Errorf("expected distinct suffixes, both %q", a)
	}
}
