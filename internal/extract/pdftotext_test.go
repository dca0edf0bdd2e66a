package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout string
	stderr string
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		page1 string
		page2 string
	}{
		{"two pages", "cover\f revision table\f", "cover", " revision table"},
		{"single page", "cover only", "cover only", ""},
		{"empty output", "", "", ""},
		{"three pages keeps first two", "a\fb\fc\f", "a", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p1, p2 := SplitPages(tt.text)
			assert.Equal(t, tt.page1, p1)
			assert.Equal(t, tt.page2, p2)
		})
	}
}

func TestFirstTwoPages(t *testing.T) {
	stub := &stubRunner{stdout: "cover page text\fsecond page text\f"}
	p := NewPdfToText(Config{}, nil)
	p.runner = stub

	p1, p2, err := p.FirstTwoPages(context.Background(), strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "cover page text", p1)
	assert.Equal(t, "second page text", p2)

	assert.Equal(t, "pdftotext", stub.gotName)
	require.GreaterOrEqual(t, len(stub.gotArgs), 4)
	assert.Equal(t, []string{"-f", "1", "-l", "2"}, stub.gotArgs[:4])
	assert.Equal(t, "-", stub.gotArgs[len(stub.gotArgs)-1])
}

func TestFirstTwoPagesExecError(t *testing.T) {
	stub := &stubRunner{stderr: "Syntax Error: couldn't read xref table", err: errors.New("exit status 1")}
	p := NewPdfToText(Config{Pdftotext: "pdftotext"}, nil)
	p.runner = stub

	_, _, err := p.FirstTwoPages(context.Background(), strings.NewReader("broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}
