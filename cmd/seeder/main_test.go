package main

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
)

func TestGenerate_NormalizesBack(t *testing.T) {
	ds := generate(rand.New(rand.NewPCG(7, 7)), 50)
	if ds.Len() != 50 {
		t.Fatalf("generated %d records, want 50", ds.Len())
	}

	var buf bytes.Buffer
	if err := loader.WriteCSV(&buf, logic.Denormalize(ds, ",")); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	raw, err := loader.ParseCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	back, err := logic.Normalize(raw, logic.DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !reflect.DeepEqual(back.Records, ds.Records) {
		t.Error("generated log does not survive a CSV round trip")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(rand.New(rand.NewPCG(1, 1)), 20)
	b := generate(rand.New(rand.NewPCG(1, 1)), 20)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different logs")
	}
}

func TestRun_Post(t *testing.T) {
	var gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"games": 5}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := run(&options{games: 5, seed: 3, post: srv.URL}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotType != "text/csv" {
		t.Errorf("content type = %q", gotType)
	}
	if lines := strings.Count(gotBody, "\n"); lines != 6 {
		t.Errorf("posted %d lines, want header + 5", lines)
	}
	if !strings.Contains(out.String(), "200 OK") {
		t.Errorf("output = %q", out.String())
	}
}
