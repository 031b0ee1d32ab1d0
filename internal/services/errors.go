package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrTransport         = errors.New("transport error")
	ErrProtocol          = errors.New("protocol error")
	ErrNotFound          = errors.New("not found")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrConversion        = errors.New("conversion error")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// TransportError reports a non-200 response or a failed round trip.
// Status is zero when no response was received.
type TransportError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("request ")
	b.WriteString(e.URL)
	if e.Status != 0 {
		fmt.Fprintf(&b, " returned %d", e.Status)
	} else {
		b.WriteString(" failed")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError reports a payload that could not be interpreted.
type ProtocolError struct {
	RawBody string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid JSON: %q: %v", e.RawBody, e.Err)
	}
	return fmt.Sprintf("invalid JSON: %q", e.RawBody)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// NotFoundError reports a title without revision content.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return "Page revision not found for: " + e.Title
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ResourceExhaustedError reports that a bounded allocation gave up.
type ResourceExhaustedError struct {
	Resource string
	Attempts int
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("unable to allocate %s after %d attempts", e.Resource, e.Attempts)
}

func (e *ResourceExhaustedError) Is(target error) bool { return target == ErrResourceExhausted }

// ConversionError reports a converter run that exited non-zero or timed out.
type ConversionError struct {
	Tool     string
	ExitCode int
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString(filepath.Base(e.Tool))
	switch {
	case e.TimedOut:
		b.WriteString(" timed out")
	case e.ExitCode != 0:
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	default:
		b.WriteString(" failed")
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// InvalidFormatError reports an unknown format key.
type InvalidFormatError struct {
	Key string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("The file format '%s' is unknown.", e.Key)
}

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }
