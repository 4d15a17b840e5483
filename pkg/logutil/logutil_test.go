package logutil

import (
	"io"
	"strings"
	"testing"
)

func TestSetOutput_RedirectsExistingLogger(t *testing.T) {
	defer SetOutput(io.Discard)
	logger := GetLogger("[test] ")

	var sb strings.Builder
	SetOutput(&sb)
	logger.Println("hello")
	if got := sb.String(); !strings.Contains(got, "[test] ") || !strings.Contains(got, "hello") {
		t.Errorf("log output %q misses prefix or message", got)
	}

	SetOutput(io.Discard)
	before := sb.String()
	logger.Println("quiet")
	if sb.String() != before {
		t.Errorf("logger still writes to old output after redirect")
	}
}
