package client

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/logger"
)

type failingSender struct {
	sent []string
}

func (s *failingSender) SendMessage(chatID int64, text string) error {
	s.sent = append(s.sent, text)
	return errors.New("chat not found")
}

func TestNotifyLogsFailedSend(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	sender := &failingSender{}
	notify(sender, 77, "primeiro manda um link de cifra")

	if len(sender.sent) != 1 || sender.sent[0] != "primeiro manda um link de cifra" {
		t.Errorf("expected one message to be sent, got %v", sender.sent)
	}
	output := buf.String()
	if !strings.Contains(output, "failed to send message to 77") || !strings.Contains(output, "chat not found") {
		t.Errorf("expected send failure to be logged, got %q", output)
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"olha essa https://www.cifraclub.com.br/hillsong/oceanos/ valeu", "https://www.cifraclub.com.br/hillsong/oceanos/"},
		{"(https://www.cifraclub.com.br/a/b/).", "https://www.cifraclub.com.br/a/b/"},
		{"sem link", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractURL(tt.text); got != tt.want {
				t.Errorf("ExtractURL(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatSections(t *testing.T) {
	sections := []cifraclub.Section{
		{Kind: cifraclub.SectionIntro, Label: "[Intro]", Lines: []string{"C G"}},
		{Kind: cifraclub.SectionOther, Lines: []string{"a", "b"}},
	}

	got := FormatSections(sections)
	want := "1. [Intro] - intro, 1 linhas\n2. (sem título) - other, 2 linhas"
	if got != want {
		t.Errorf("FormatSections() = %q, want %q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("expected no trailing newline")
	}
}
