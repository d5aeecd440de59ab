package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/mealdeck/mealdeck/internal/handler/dto"
)

func TestHello(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] == "" {
		t.Error("message is empty")
	}
}

func TestNotFound(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", body.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single id", raw: "abc", want: []string{"abc"}},
		{name: "multiple ids", raw: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "whitespace trimmed", raw: " a , b ", want: []string{"a", "b"}},
		{name: "empty entries dropped", raw: "a,,b,", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseIDList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIDList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "0", want: false},
		{value: "", want: false},
		{value: "yes", want: false},
	}

	for _, tt := range tests {
		if got := parseBoolParam(tt.value); got != tt.want {
			t.Errorf("parseBoolParam(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
