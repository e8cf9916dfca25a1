package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUser(t *testing.T) {
	if !IsUser(User("x")) {
		t.Fatalf("expected User() to be a user error")
	}
	if !IsUser(fmt.Errorf("wrapped: %w", Userf("bad %s", "flag"))) {
		t.Fatalf("expected wrapped user error to be detected")
	}
	if IsUser(errors.New("plain")) {
		t.Fatalf("plain error must not be a user error")
	}
	if got := Userf("field %q", "season").Error(); got != `field "season"` {
		t.Fatalf("Error() = %q", got)
	}
}
