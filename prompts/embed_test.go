package prompts

import (
	"strings"
	"testing"
)

func TestMomentReply_ContainsAllPlaceholders(t *testing.T) {
	tmpl, err := MomentReply()
	if err != nil {
		t.Fatalf("MomentReply: %v", err)
	}
	for _, ph := range []string{"{ai_name}", "{user_name}", "{moment_content}", "{user_comment}"} {
		if !strings.Contains(tmpl, ph) {
			t.Fatalf("template missing placeholder %s", ph)
		}
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("hi {a}, {b}! {a} again. {missing}", map[string]string{
		"a": "alice",
		"b": "bob",
	})
	want := "hi alice, bob! alice again. {missing}"
	if got != want {
		t.Fatalf("Interpolate = %q, want %q", got, want)
	}

	if got := Interpolate("no placeholders", nil); got != "no placeholders" {
		t.Fatalf("nil vars changed input: %q", got)
	}
}
