package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeValidation, "invalid input"),
			want: "VALIDATION_ERROR: invalid input",
		},
		{
			name: "with wrapped error",
			err:  Wrap(CodeSource, "read failed", errors.New("underlying")),
			want: "SOURCE_ERROR: read failed: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeInternal, "wrapped", underlying)

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is() = false, want true")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := New(CodeMalformed, "bad record").
		WithDetail("report", "ZOOKEEPER-1.json").
		WithDetail("field", "possible_fix_code")

	if err.Details["report"] != "ZOOKEEPER-1.json" {
		t.Errorf("Details[report] = %s, want ZOOKEEPER-1.json", err.Details["report"])
	}
	if err.Details["field"] != "possible_fix_code" {
		t.Errorf("Details[field] = %s, want possible_fix_code", err.Details["field"])
	}

	err = err.WithDetails(map[string]string{"only": "this"})
	if len(err.Details) != 1 {
		t.Errorf("len(Details) = %d, want 1", len(err.Details))
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"ValidationError", ValidationError("bad"), CodeValidation},
		{"NotFoundError", NotFoundError("method"), CodeNotFound},
		{"MalformedError", MalformedError("bad json", errors.New("eof")), CodeMalformed},
		{"SourceError", SourceError("git", errors.New("no repo")), CodeSource},
		{"JudgeError", JudgeError("llm", errors.New("quota")), CodeJudge},
		{"InternalError", InternalError("boom", nil), CodeInternal},
		{"ServiceUnavailableError", ServiceUnavailableError("redis"), CodeUnavailable},
		{"TimeoutError", TimeoutError("judge"), CodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
		})
	}

	if msg := NotFoundError("method").Message; msg != "method not found" {
		t.Errorf("Message = %q, want 'method not found'", msg)
	}
	if msg := ServiceUnavailableError("").Message; msg != "service unavailable" {
		t.Errorf("Message = %q, want 'service unavailable'", msg)
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("resolving: %w", NotFoundError("file"))

	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(fmt.Errorf("x: %w", NotFoundError("test"))) {
		t.Error("IsNotFound(wrapped NotFoundError) = false, want true")
	}
	if IsNotFound(ValidationError("test")) {
		t.Error("IsNotFound(ValidationError) = true, want false")
	}
	if !IsValidation(ValidationError("test")) {
		t.Error("IsValidation(ValidationError) = false, want true")
	}
	if !IsMalformed(MalformedError("test", nil)) {
		t.Error("IsMalformed(MalformedError) = false, want true")
	}
	if IsMalformed(errors.New("standard error")) {
		t.Error("IsMalformed(standard error) = true, want false")
	}
}
