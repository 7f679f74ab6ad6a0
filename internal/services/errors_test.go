package services_test

import (
	"errors"
	"strings"
	"testing"

	"asrprep/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "fleurs", "download", "train.tsv", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fleurs", "download", "train.tsv"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrSchema, "dataset", "rename", "missing column", nil), "schema"},
		{services.Wrap(services.ErrConfiguration, "fleurs", "config", "unknown", nil), "configuration"},
		{services.Wrap(services.ErrNotFound, "audiofolder", "load", "missing", nil), "not_found"},
		{services.Wrap(services.ErrExternalTool, "features", "extract", "", errors.New("exit 1")), "external_tool"},
		{errors.New("plain"), "failed"},
	}
	for _, tc := range cases {
		if got := services.FailureKind(tc.err); got != tc.want {
			t.Fatalf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
