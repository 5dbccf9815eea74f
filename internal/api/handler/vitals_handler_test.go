package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/infrastructure/export"
)

func newVitalsStub() *stubVitalsService {
	ts := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &stubVitalsService{snapshots: map[string]*domain.VitalsSnapshot{
		patientID: {
			UserID: patientID, RunID: "run-7", HeartRate: 85, SpO2: 94, Temperature: 36.8,
			Stream:     []domain.Sample{{HeartRate: 85, SpO2: 94, Temperature: 36.8, Timestamp: ts}},
			RecordedAt: ts,
		},
	}}
}

func TestVitalsHandler_Latest(t *testing.T) {
	e := newTestEcho()
	h := NewVitalsHandler(newVitalsStub())

	c, rec := newJSONContext(e, http.MethodGet, "/api/health/latest/"+patientID, "")
	if err := h.Latest(withParam(c, "userId", patientID)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["heartRate"] != float64(85) || resp["runId"] != "run-7" {
		t.Fatalf("snapshot fields missing: %+v", resp)
	}
	assessment, ok := resp["assessment"].(map[string]any)
	if !ok || assessment["sos"] != true {
		t.Fatalf("expected SOS assessment, got %+v", resp["assessment"])
	}
}

func TestVitalsHandler_LatestErrors(t *testing.T) {
	e := newTestEcho()
	h := NewVitalsHandler(newVitalsStub())

	c, _ := newJSONContext(e, http.MethodGet, "/api/health/latest/"+caregiverID, "")
	if err := h.Latest(withParam(c, "userId", caregiverID)); !errors.Is(err, domain.ErrVitalsNotFound) {
		t.Fatalf("expected ErrVitalsNotFound, got %v", err)
	}

	c, _ = newJSONContext(e, http.MethodGet, "/api/health/latest/bad", "")
	if err := h.Latest(withParam(c, "userId", "bad")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestVitalsHandler_Export(t *testing.T) {
	e := newTestEcho()
	h := NewVitalsHandler(newVitalsStub())

	c, rec := newJSONContext(e, http.MethodGet, "/api/health/export/"+patientID, "")
	if err := h.Export(withParam(c, "userId", patientID)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "vitals_"+patientID) {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetReadings)
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected header plus one reading, got %d rows (%v)", len(rows), err)
	}
}
