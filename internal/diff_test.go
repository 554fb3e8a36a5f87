package internal

import "testing"

func TestExtractNew(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{"first observation", "Hello there", "", "Hello there"},
		{"first observation keeps spacing", " Hello ", "", " Hello "},
		{"growth", "Hello world", "Hello", "world"},
		{"growth trims suffix", "Hello   world  ", "Hello", "world"},
		{"unchanged", "Hello", "Hello", ""},
		{"shrink", "Hello", "Hello world", ""},
		{"replacement", "Goodbye", "Hello", "Goodbye"},
		{"reflow in the middle", "Hello, world", "Hello world", "Hello, world"},
		{"multibyte growth", "日本語です。", "日本語", "です。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractNew(tt.current, tt.previous); got != tt.want {
				t.Errorf("ExtractNew(%q, %q) = %q, want %q", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestExtractNew_PrefixLaw(t *testing.T) {
	prev := "The meeting starts"
	for _, suffix := range []string{" now", " at ten.", "  ", ""} {
		got := ExtractNew(prev+suffix, prev)
		want := trimmed(suffix)
		if got != want {
			t.Errorf("ExtractNew(prev+%q, prev) = %q, want %q", suffix, got, want)
		}
	}
}

func trimmed(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

func TestIsNoise(t *testing.T) {
	tests := []struct {
		text      string
		minLength int
		want      bool
	}{
		{"", 2, true},
		{"a", 2, true},
		{"  a  ", 2, true},
		{"ab", 2, false},
		{"é", 0, true},
		{"日本", 0, false},
		{"abc", 4, true},
		{"abcd", 4, false},
	}
	for _, tt := range tests {
		if got := IsNoise(tt.text, tt.minLength); got != tt.want {
			t.Errorf("IsNoise(%q, %d) = %v, want %v", tt.text, tt.minLength, got, tt.want)
		}
	}
}
