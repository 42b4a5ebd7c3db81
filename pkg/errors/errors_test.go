package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorText(t *testing.T) {
	cause := errors.New("missing score")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeNodeNotFound, "node %q not found", "KRAS"), `NODE_NOT_FOUND: node "KRAS" not found`},
		{"wrap", Wrap(ErrCodeInvalidPathRecord, cause, "paths of type %q", "expression"),
			`INVALID_PATH_RECORD: paths of type "expression": missing score`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("missing score")
	err := Wrap(ErrCodeInvalidPathRecord, cause, "record 3")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")
	tests := []struct {
		name     string
		err      error
		code     Code
		kind     Kind
		message  string
		isCode   Code
		isResult bool
	}{
		{"coded", New(ErrCodeEdgeNotFound, "no link"), ErrCodeEdgeNotFound, KindNotFound, "no link", ErrCodeEdgeNotFound, true},
		{"outer code wins", Wrap(ErrCodeInternal, inner, "outer"), ErrCodeInternal, KindInternal, "outer", ErrCodeInvalidInput, false},
		{"fmt wrapped", fmt.Errorf("load: %w", inner), ErrCodeInvalidInput, KindInvalid, "inner", ErrCodeInvalidInput, true},
		{"plain", errors.New("plain"), "", KindInternal, "plain", ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %v, want %v", got, tt.kind)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if got := Is(tt.err, tt.isCode); got != tt.isResult {
				t.Errorf("Is(%q) = %v, want %v", tt.isCode, got, tt.isResult)
			}
		})
	}
}

func TestNilError(t *testing.T) {
	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" || IsNotFound(nil) {
		t.Error("nil error should carry no code")
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{ErrCodeInvalidInput, KindInvalid},
		{ErrCodeInvalidPathRecord, KindInvalid},
		{ErrCodeInvalidFormat, KindInvalid},
		{ErrCodeInvalidMode, KindInvalid},
		{ErrCodeInvalidPath, KindInvalid},
		{ErrCodeNodeNotFound, KindNotFound},
		{ErrCodeSessionNotFound, KindNotFound},
		{ErrCodeUnavailable, KindUnavailable},
		{ErrCodeInternal, KindInternal},
		{Code("SOMETHING_ELSE"), KindInternal},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %v, want %v", tt.code, got, tt.want)
		}
	}

	if !IsNotFound(New(ErrCodeSessionNotFound, "x")) || IsNotFound(New(ErrCodeInvalidInput, "x")) {
		t.Error("IsNotFound misclassifies")
	}
	if !IsInvalid(Wrap(ErrCodeInvalidMode, errors.New("x"), "mode")) || IsInvalid(errors.New("plain")) {
		t.Error("IsInvalid misclassifies")
	}
}
