package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/model"
)

func TestBuildDailyPDF(t *testing.T) {
	data := DailyData{
		City: "Butuan",
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Tally: dispatch.Tally{
			Total: 5, Completed: 2, Cancelled: 1, Pending: 2,
		},
		Progress: []model.LinerProgress{
			{LinerID: "l1", FullName: "Ana", BusinessName: "Ana Junkshop",
				Completed: 2, Pending: 1, TradeValue: 120.5, Commission: 12.05},
		},
	}

	pdf, filename, err := buildDailyPDF(data)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
	if filename != "DISPATCH_Butuan_20250310.pdf" {
		t.Fatalf("filename wrong: %s", filename)
	}
}

func TestBuildDailyPDFEmptyRoster(t *testing.T) {
	data := DailyData{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}

	pdf, filename, err := buildDailyPDF(data)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty roster should still render a document")
	}
	if filename != "DISPATCH_unknown_20250310.pdf" {
		t.Fatalf("filename wrong: %s", filename)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	cases := map[string]string{
		"Butuan City": "Butuan_City",
		"a/b\\c":      "a-b-c",
		"  ":          "unknown",
	}
	for in, want := range cases {
		if got := safeFilenamePart(in); got != want {
			t.Fatalf("safeFilenamePart(%q): got %q want %q", in, got, want)
		}
	}
}
