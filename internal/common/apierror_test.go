package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Sentinels(t *testing.T) {
	br := BadRequest("user id %q is malformed", "xyz")
	if !errors.Is(br, ErrorValidation) {
		t.Errorf("BadRequest should wrap ErrorValidation")
	}
	if br.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", br.Status)
	}

	nf := NotFound("content not found")
	if !errors.Is(nf, ErrorNotFound) {
		t.Errorf("NotFound should wrap ErrorNotFound")
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(NotFound("x")); got != http.StatusNotFound {
		t.Errorf("StatusOf(NotFound) = %d", got)
	}
	wrapped := fmt.Errorf("handler: %w", BadRequest("y"))
	if got := StatusOf(wrapped); got != http.StatusBadRequest {
		t.Errorf("StatusOf(wrapped BadRequest) = %d", got)
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain) = %d", got)
	}
}
