package journal

import (
	"testing"
	"time"
)

func TestSnakecase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"creationDate", "creation_date"},
		{"modifiedDate", "modified_date"},
		{"Weather Summary", "weather_summary"},
		{"already_snake", "already_snake"},
		{"Title", "title"},
		{"HTMLBody", "html_body"},
		{"  padded  key ", "padded_key"},
	}
	for _, tt := range tests {
		if got := Snakecase(tt.in); got != tt.want {
			t.Errorf("Snakecase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText(`It\'s a line\. With escapes\!`)
	want := "It's a line. With escapes!"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDateString(t *testing.T) {
	got := DateString(time.Date(2022, 7, 2, 12, 49, 38, 0, time.Local))
	if got != "Sat, Jul 02, 2022 12:49 PM" {
		t.Errorf("got %q", got)
	}
}
