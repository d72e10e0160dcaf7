package repl

import (
	"errors"
	"strings"
	"testing"
)

func TestLooksLikeMarkdown(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want bool
	}{
		{"Reminder #1 set: call mom at 15:00.", false},
		{"# Heading\nbody", true},
		{"- one\n- two", true},
		{"some **bold** text", true},
		{"```go\nfmt.Println()\n```", true},
		{"09:05  call mom", false},
	}
	for _, tc := range cases {
		if got := looksLikeMarkdown(tc.in); got != tc.want {
			t.Errorf("looksLikeMarkdown(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRendererPlainPassthrough(t *testing.T) {
	t.Parallel()
	r := newRenderer()
	in := "Reminder #2 removed."
	if got := r.reply(in); got != in {
		t.Errorf("reply(%q) = %q, want unchanged", in, got)
	}
}

func TestNotificationAndError(t *testing.T) {
	t.Parallel()
	r := newRenderer()
	if got := r.notification("Reminder: tea (16:00)"); !strings.Contains(got, "Reminder: tea") {
		t.Errorf("notification = %q", got)
	}
	if got := r.errorLine(errors.New("boom")); !strings.Contains(got, "boom") {
		t.Errorf("errorLine = %q", got)
	}
}
