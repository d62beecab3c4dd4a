package utils

import "testing"

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plan.pdf", "pdf"},
		{"Plan.PDF", "pdf"},
		{"photo.jpeg", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noextension", ""},
	}

	for _, test := range tests {
		if got := GetFileExtension(test.input); got != test.expected {
			t.Errorf("GetFileExtension(%s) = %s, expected %s", test.input, got, test.expected)
		}
	}
}

func TestIsPDFFile(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"plan.pdf", true},
		{"PLAN.PDF", true},
		{"Plan.Pdf", true},
		{"plan.png", false},
		{"pdf", false},
		{"plan.pdf.png", false},
	}

	for _, test := range tests {
		if got := IsPDFFile(test.input); got != test.expected {
			t.Errorf("IsPDFFile(%s) = %v, expected %v", test.input, got, test.expected)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.webp", true},
		{"plan.pdf", false},
		{"notes.txt", false},
	}

	for _, test := range tests {
		if got := IsImageFile(test.input); got != test.expected {
			t.Errorf("IsImageFile(%s) = %v, expected %v", test.input, got, test.expected)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plan.pdf", "plan.pdf"},
		{"dir/plan.pdf", "dir_plan.pdf"},
		{`what?.png`, "what_.png"},
		{" spaced.pdf ", "spaced.pdf"},
	}

	for _, test := range tests {
		if got := SanitizeFilename(test.input); got != test.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}

	for _, test := range tests {
		if got := FormatFileSize(test.input); got != test.expected {
			t.Errorf("FormatFileSize(%d) = %s, expected %s", test.input, got, test.expected)
		}
	}
}
