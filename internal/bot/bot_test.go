package bot

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCallbackRouting(t *testing.T) {
	tests := []struct {
		data, key, payload string
	}{
		{"tom:C#", "tom", "C#"},
		{"confirm_clear", "confirm_clear", ""},
		{"song_info:a:b", "song_info", "a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			if got := CallbackKey(tt.data); got != tt.key {
				t.Errorf("CallbackKey(%q) = %q, want %q", tt.data, got, tt.key)
			}
			if got := CallbackPayload(tt.data); got != tt.payload {
				t.Errorf("CallbackPayload(%q) = %q, want %q", tt.data, got, tt.payload)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	t.Run("Short", func(t *testing.T) {
		parts := SplitMessage("C G\nAm F", 100)
		if len(parts) != 1 || parts[0] != "C G\nAm F" {
			t.Errorf("unexpected parts %q", parts)
		}
	})

	t.Run("LineBoundaries", func(t *testing.T) {
		parts := SplitMessage("aaaa\nbbbb\ncccc", 9)
		want := []string{"aaaa\nbbbb", "cccc"}
		if strings.Join(parts, "|") != strings.Join(want, "|") {
			t.Errorf("got %q, want %q", parts, want)
		}
	})

	t.Run("LongLineIsCut", func(t *testing.T) {
		parts := SplitMessage("ááááá\nb", 2)
		for _, p := range parts {
			if utf8.RuneCountInString(p) > 2 {
				t.Errorf("part %q exceeds the limit", p)
			}
		}
		if strings.Join(parts, "") != "áááááb" {
			t.Errorf("lost text: %q", parts)
		}
	})

	t.Run("EveryPartWithinLimit", func(t *testing.T) {
		text := strings.Repeat("Em   C   G   D\n   Ruja o leão de Judá\n", 300)
		for _, p := range SplitMessage(text, MessageLimit) {
			if utf8.RuneCountInString(p) > MessageLimit {
				t.Fatalf("part of %d runes exceeds the limit", utf8.RuneCountInString(p))
			}
		}
	})
}
