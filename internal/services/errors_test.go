package services_test

import (
	"errors"
	"strings"
	"testing"

	"wsexport/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConfiguration, "convert", "resolve", "missing tool", base)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "resolve", "missing tool"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTypedErrorsMatchMarkers(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		marker error
	}{
		{"transport", &services.TransportError{URL: "https://x", Status: 503}, services.ErrTransport},
		{"protocol", &services.ProtocolError{RawBody: "<html>"}, services.ErrProtocol},
		{"not found", &services.NotFoundError{Title: "Foo"}, services.ErrNotFound},
		{"exhausted", &services.ResourceExhaustedError{Resource: "temp file", Attempts: 100}, services.ErrResourceExhausted},
		{"conversion", &services.ConversionError{Tool: "ebook-convert", ExitCode: 1}, services.ErrConversion},
		{"format", &services.InvalidFormatError{Key: "odt"}, services.ErrInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := services.Wrap(services.ErrConfiguration, "test", "", "", tc.err)
			if !errors.Is(wrapped, tc.marker) {
				t.Fatalf("expected %v to match %v", wrapped, tc.marker)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (&services.InvalidFormatError{Key: "unknown"}).Error(); got != "The file format 'unknown' is unknown." {
		t.Fatalf("unexpected invalid format message %q", got)
	}
	if got := (&services.NotFoundError{Title: "Les Misérables"}).Error(); got != "Page revision not found for: Les Misérables" {
		t.Fatalf("unexpected not found message %q", got)
	}
	got := (&services.ProtocolError{RawBody: "oops", Err: errors.New("bad token")}).Error()
	if got != `invalid JSON: "oops": bad token` {
		t.Fatalf("unexpected protocol message %q", got)
	}
	conv := &services.ConversionError{Tool: "/opt/calibre/ebook-convert", TimedOut: true, Stderr: "still working\n"}
	if got := conv.Error(); got != "ebook-convert timed out: still working" {
		t.Fatalf("unexpected conversion message %q", got)
	}
}

func TestConversionErrorAsExposesStderr(t *testing.T) {
	err := services.Wrap(services.ErrConversion, "convert", "run", "", &services.ConversionError{Tool: "x", ExitCode: 2, Stderr: "bad input"})
	var convErr *services.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError in chain, got %v", err)
	}
	if convErr.Stderr != "bad input" || convErr.ExitCode != 2 {
		t.Fatalf("unexpected conversion error %+v", convErr)
	}
}
