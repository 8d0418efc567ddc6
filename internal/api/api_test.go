package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/testutil"
)

// testEnv sets up a temp archive, an index with one converted document, and
// the router. authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	db := testutil.TestDB(t)
	dstDir, dst := testutil.TestTree(t)

	testutil.WriteFile(t, dstDir, "general/2019-10-31.md",
		"# 2019-10-31\n\n|Time|Icon|Name|Message|\n|---|---|---|---|\n|00:00||alice|morning standup|\n")
	err := db.UpsertDocument(index.DocRow{
		Path:      "general/2019-10-31.md",
		Channel:   "general",
		Name:      "2019-10-31",
		Checksum:  "cs",
		UpdatedAt: time.Now().UTC(),
	}, []index.MessageRow{
		{TS: "1572480000.000000", Day: "2019-10-31", Username: "alice", Text: "morning standup"},
	})
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	return NewRouter(db, dst, authToken != "", authToken)
}

func get(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListChannels(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/channels", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Channels []index.ChannelInfo `json:"channels"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Channels) != 1 || resp.Channels[0].Name != "general" {
		t.Errorf("channels = %+v", resp.Channels)
	}
}

func TestListDocuments(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/channels/general/documents", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Documents []string `json:"documents"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Documents) != 1 || resp.Documents[0] != "general/2019-10-31.md" {
		t.Errorf("documents = %v", resp.Documents)
	}
}

func TestGetLog(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/logs/general/2019-10-31.md", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); body == "" || body[0] != '#' {
		t.Errorf("body = %q", body)
	}
}

func TestGetLog_NotFound(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/logs/general/1999-01-01.md", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/search?q=standup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Results []index.SearchResult `json:"results"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "general/2019-10-31.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/search", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	router := testEnv(t, "sekret")
	w := get(t, router, "/channels", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	router := testEnv(t, "sekret")
	w := get(t, router, "/channels", "sekret")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
