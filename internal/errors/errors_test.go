package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := NewEmptyForegroundError("no foreground voxels")
	if plain.Error() != "empty_foreground: no foreground voxels" {
		t.Errorf("Unexpected message: %s", plain.Error())
	}

	cause := errors.New("unexpected EOF")
	wrapped := NewDecodeError("truncated volume data", cause)
	if wrapped.Error() != "decode: truncated volume data (caused by: unexpected EOF)" {
		t.Errorf("Unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected wrapped cause to be reachable via errors.Is")
	}
}

func TestIsKind(t *testing.T) {
	err := NewDegenerateRangeError("constant volume")
	if !IsKind(err, KindDegenerateRange) {
		t.Error("Expected degenerate_range kind to match")
	}
	if IsKind(err, KindDecode) {
		t.Error("Expected kind mismatch to report false")
	}
	if IsKind(errors.New("plain"), KindInternal) {
		t.Error("Expected plain errors not to match any kind")
	}
}

func TestGetStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("empty path", nil), http.StatusBadRequest},
		{NewDecodeError("bad magic", nil), http.StatusUnprocessableEntity},
		{NewEmptyForegroundError("empty"), http.StatusUnprocessableEntity},
		{NewDegenerateRangeError("flat"), http.StatusUnprocessableEntity},
		{NewComputationError("nan", nil), http.StatusUnprocessableEntity},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := GetStatusCode(tc.err); got != tc.want {
			t.Errorf("Expected %d for %v, got %d", tc.want, tc.err, got)
		}
	}
}
