package names

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jiří", "Jiri"},
		{"Nguyễn Văn An", "Nguyen Van An"},
		{"François", "Francois"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := RemoveDiacritics(tc.input); got != tc.expected {
			t.Errorf("RemoveDiacritics(%q) = %q; want %q", tc.input, got, tc.expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Anna-Marie Nováková", "anna marie novakova"},
		{"  Budi   Santoso ", "budi santoso"},
		{"SITI rahayu", "siti rahayu"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Normalize(tc.input); got != tc.expected {
			t.Errorf("Normalize(%q) = %q; want %q", tc.input, got, tc.expected)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Budi   Santoso ", "Budi Santoso"},
		{"Dewi", "Dewi"},
		{"\tTab\tSeparated\t", "Tab Separated"},
	}

	for _, tc := range tests {
		if got := Clean(tc.input); got != tc.expected {
			t.Errorf("Clean(%q) = %q; want %q", tc.input, got, tc.expected)
		}
	}
}
