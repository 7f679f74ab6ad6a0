package services_test

import (
	"context"
	"testing"

	"asrprep/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "map")
	ctx = services.WithSource(ctx, "fleurs")
	ctx = services.WithSplit(ctx, "train")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "map" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if source, ok := services.SourceFromContext(ctx); !ok || source != "fleurs" {
		t.Fatalf("unexpected source: %v %v", source, ok)
	}
	if split, ok := services.SplitFromContext(ctx); !ok || split != "train" {
		t.Fatalf("unexpected split: %v %v", split, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithSplit(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.SplitFromContext(ctx); ok {
		t.Fatal("expected no split value")
	}
}
