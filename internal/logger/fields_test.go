package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("does not panic")
}

func TestWithProviderAndRun(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	log := WithRun(WithProvider(zap.New(core), "ollama", "llama3.1"), "7f9c")
	log.Info("run started")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "ollama" || ctx[FieldModel] != "llama3.1" {
		t.Fatalf("unexpected provider fields: %v", ctx)
	}
	if ctx[FieldRunID] != "7f9c" {
		t.Fatalf("expected run id, got %v", ctx[FieldRunID])
	}
}

func TestProviderFieldsSkipsEmpty(t *testing.T) {
	if fields := ProviderFields("", ""); len(fields) != 0 {
		t.Fatalf("expected empty fields, got %d", len(fields))
	}

	fields := ProviderFields("gemini", "")
	if len(fields) != 1 || fields[0].Key != FieldProvider {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}
