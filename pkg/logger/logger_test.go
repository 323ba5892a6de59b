package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_JSONOutputWithService(t *testing.T) {
	Reset()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "api-platform"})
	log := Component("auth")
	log.Debug().Str("account_id", "7").Msg("hello")

	var evt map[string]any
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("expected one JSON event, got %q: %v", buf.String(), err)
	}
	if evt["service"] != "api-platform" || evt["component"] != "auth" || evt["message"] != "hello" {
		t.Fatalf("unexpected event: %v", evt)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var first, second bytes.Buffer
	Init(Options{Level: "warn", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	l := Get()
	l.Info().Msg("filtered")
	l.Warn().Msg("kept")

	if second.Len() != 0 {
		t.Fatalf("second Init must not take effect")
	}
	if bytes.Contains(first.Bytes(), []byte("filtered")) || !bytes.Contains(first.Bytes(), []byte("kept")) {
		t.Fatalf("unexpected output: %q", first.String())
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}
