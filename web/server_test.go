package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"daytally/balance"
	"daytally/entry"
	"daytally/storage"
)

var testSchedule = balance.Schedule{
	WorkStart:         "08:00",
	WorkEnd:           "17:00",
	LunchBreakMinutes: 60,
	OtherBreakMinutes: 15,
}

func TestServer_MonthPageRendersDayRows(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	insertEntries(t, store, []entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(12 * time.Hour)},
	})

	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/month/2026-03")
	if err != nil {
		t.Fatalf("request month page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	if !strings.Contains(text, "2026-03-02") {
		t.Fatalf("month page missing day row: %s", text)
	}
	if !strings.Contains(text, "7.75") {
		t.Fatalf("month page missing target hours: %s", text)
	}
}

func TestServer_BalancePreviewApplyUndoFlow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	insertEntries(t, store, []entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
		{ProjectNumber: "P-200", StartDateTime: day.Add(10 * time.Hour), EndDateTime: day.Add(10*time.Hour + 30*time.Minute)},
	})

	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	preview := postBalancePreview(t, ts.URL, "2026-03-02")
	if preview.NoOp {
		t.Fatalf("expected a real plan, got no-op")
	}
	if preview.Token == "" {
		t.Fatalf("expected a balance token")
	}
	if preview.TimeDifferenceHours == nil || *preview.TimeDifferenceHours != 6.25 {
		t.Fatalf("unexpected time difference: %v", preview.TimeDifferenceHours)
	}
	if len(preview.Entries) != 2 {
		t.Fatalf("expected 2 plan entries, got %d", len(preview.Entries))
	}

	// Nothing is persisted before apply.
	entries, err := store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	for _, e := range entries {
		if e.CorrectedDuration != nil {
			t.Fatalf("preview must not write corrections")
		}
	}

	applyResp := postBalanceApply(t, ts.URL, "2026-03-02", preview.Token)
	if applyResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on apply, got %d", applyResp.StatusCode)
	}
	var applied balanceApplyResponse
	decodeBody(t, applyResp, &applied)
	if applied.RowsUpdated != 2 {
		t.Fatalf("expected 2 updated rows, got %d", applied.RowsUpdated)
	}

	entries, err = store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	total := int64(0)
	for _, e := range entries {
		if e.CorrectedDuration == nil {
			t.Fatalf("expected corrected duration after apply")
		}
		total += *e.CorrectedDuration
	}
	if total != 27900 {
		t.Fatalf("expected corrected sum 27900, got %d", total)
	}

	// Tokens are single use.
	reuse := postBalanceApply(t, ts.URL, "2026-03-02", preview.Token)
	if reuse.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on token reuse, got %d", reuse.StatusCode)
	}
	reuse.Body.Close()

	// Undo clears everything and is idempotent.
	for range 2 {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/balance/2026-03-02", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("undo request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on undo, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	entries, err = store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	for _, e := range entries {
		if e.CorrectedDuration != nil {
			t.Fatalf("expected corrections cleared after undo")
		}
	}
}

func TestServer_BalancePreviewEmptyDayIsNoOp(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	preview := postBalancePreview(t, ts.URL, "2026-03-02")
	if !preview.NoOp {
		t.Fatalf("expected no-op preview for empty day")
	}
	if preview.Token != "" {
		t.Fatalf("no-op preview must not issue a token")
	}
}

func TestServer_BalancePreviewZeroDurationsRejected(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	start := day.Add(9 * time.Hour)
	insertEntries(t, store, []entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: start, EndDateTime: start},
	})

	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/balance/2026-03-02", "application/json", nil)
	if err != nil {
		t.Fatalf("preview request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for zero-duration day, got %d", resp.StatusCode)
	}
}

func TestServer_TimerStartStop(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	body := bytes.NewBufferString(`{"projectNumber":"P-100"}`)
	resp, err := http.Post(ts.URL+"/api/timer/start", "application/json", body)
	if err != nil {
		t.Fatalf("start request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 on start, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Second start conflicts.
	resp, err = http.Post(ts.URL+"/api/timer/start", "application/json", bytes.NewBufferString(`{"projectNumber":"P-200"}`))
	if err != nil {
		t.Fatalf("second start request: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second start, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/timer/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("stop request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d", resp.StatusCode)
	}
	var stopped timerResponse
	decodeBody(t, resp, &stopped)
	if stopped.ProjectNumber != "P-100" || stopped.End == "" {
		t.Fatalf("unexpected stop response: %+v", stopped)
	}

	resp, err = http.Post(ts.URL+"/api/timer/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("second stop request: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second stop, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_EntryCRUD(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, testSchedule))
	defer ts.Close()

	payload := `{"projectNumber":"P-100","start":"2026-03-02T09:00:00+01:00","end":"2026-03-02T10:00:00+01:00"}`
	resp, err := http.Post(ts.URL+"/api/entry", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 on create, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	entries, err := store.ListEntries()
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	id := entries[0].ID

	patch := `{"projectNumber":"P-200","start":"2026-03-02T09:00:00+01:00","end":"2026-03-02T11:00:00+01:00"}`
	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/api/entry/"+strconv.FormatInt(id, 10), strings.NewReader(patch))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("patch request: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on patch, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/entry/"+strconv.FormatInt(id, 10), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func postBalancePreview(t *testing.T, baseURL, date string) balancePreviewResponse {
	t.Helper()

	resp, err := http.Post(baseURL+"/api/balance/"+date, "application/json", nil)
	if err != nil {
		t.Fatalf("preview request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected 200 on preview, got %d: %s", resp.StatusCode, body)
	}

	var preview balancePreviewResponse
	decodeBody(t, resp, &preview)
	return preview
}

func postBalanceApply(t *testing.T, baseURL, date, token string) *http.Response {
	t.Helper()

	payload, _ := json.Marshal(balanceApplyRequest{Token: token})
	resp, err := http.Post(baseURL+"/api/balance/"+date+"/apply", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("apply request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "daytally_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func insertEntries(t *testing.T, store *storage.SQLiteStore, entries []entry.Entry) {
	t.Helper()
	inserted, err := store.InsertEntries(entries)
	if err != nil {
		t.Fatalf("insert entries: %v", err)
	}
	if inserted != len(entries) {
		t.Fatalf("expected %d inserted rows, got %d", len(entries), inserted)
	}
}
