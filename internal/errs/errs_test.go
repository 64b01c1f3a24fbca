package errs

import (
	"errors"
	"fmt"
	"testing"
)

var errSample = New("Sample", "sample failure")

func TestKindOfFollowsWrapChain(t *testing.T) {
	wrapped := Wrap(Wrapf(errSample, "load %s", "vault"), "approve report")
	if !errors.Is(wrapped, errSample) {
		t.Fatalf("errors.Is(wrapped, errSample) = false")
	}
	if got := KindOf(wrapped); got != "Sample" {
		t.Fatalf("KindOf() = %q, want Sample", got)
	}
	if got := wrapped.Error(); got != "approve report: load vault: sample failure" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	if got := KindOf(fmt.Errorf("boom")); got != KindInternal {
		t.Fatalf("KindOf() = %q, want %q", got, KindInternal)
	}
	if got := KindOf(nil); got != "" {
		t.Fatalf("KindOf(nil) = %q, want empty", got)
	}
}

func TestWithStackCapturesOnce(t *testing.T) {
	first := WithStack(errSample)
	second := WithStack(Wrap(first, "outer"))

	var se *StackError
	if !errors.As(second, &se) {
		t.Fatalf("expected StackError in chain")
	}
	if len(se.Stack()) == 0 {
		t.Fatalf("stack is empty")
	}
	if !errors.Is(second, errSample) {
		t.Fatalf("stack wrapper broke errors.Is")
	}
	if Wrap(nil, "x") != nil || WithStack(nil) != nil {
		t.Fatalf("nil errors must stay nil")
	}
}

func TestErrorChainStrings(t *testing.T) {
	chain := ErrorChainStrings(Wrap(errSample, "outer"))
	if len(chain) != 2 || chain[1] != "sample failure" {
		t.Fatalf("chain = %v", chain)
	}
}
