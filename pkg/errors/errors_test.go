package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:      http.StatusBadRequest,
		CodeInvalidIDFormat:   http.StatusUnprocessableEntity,
		CodeAuthFailed:        http.StatusUnauthorized,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeEmptyCart:         http.StatusBadRequest,
		CodeIllegalTransition: http.StatusBadRequest,
		CodeUpstream:          http.StatusServiceUnavailable,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Errorf("MetadataFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	if got := MetadataFor(Code("nope")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code mapped to %d", got)
	}
}

func TestParseCode(t *testing.T) {
	if ParseCode("empty_cart") != CodeEmptyCart {
		t.Fatal("expected empty_cart to round-trip")
	}
	if ParseCode("garbage") != CodeInternal {
		t.Fatal("expected unknown code to default to internal")
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeNotFound, "user missing")
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("expected not_found, got %s", typed.Code())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUpstream, cause, "gateway unreachable")

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "upstream_unavailable: gateway unreachable" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, errors.New("boom"), "tick failed")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
