package promptapi

import (
	"errors"
	"fmt"
	"testing"
)

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server detail", &Error{Status: 500, Detail: "model overloaded"}, "model overloaded"},
		{"wrapped detail", fmt.Errorf("chat: %w", &Error{Status: 422, Detail: "user_input: field required"}), "user_input: field required"},
		{"no detail", &Error{Status: 502}, "fallback"},
		{"transport error", errors.New("connection refused"), "fallback"},
		{"nil", nil, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detail(tt.err, "fallback"); got != tt.want {
				t.Errorf("Detail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	if got := (&Error{Status: 404, Detail: "Session not found"}).Error(); got != "prompt api: status 404: Session not found" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&Error{Status: 500}).Error(); got != "prompt api: status 500" {
		t.Errorf("Error() = %q", got)
	}
	if (&Error{Status: 404}).Temporary() || !(&Error{Status: 503}).Temporary() {
		t.Error("Temporary() should be true only for 5xx")
	}
}
