package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
)

// TestCanvasCRUD walks a canvas through create, read, update and delete
func TestCanvasCRUD(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	list := decode[CanvasListResponse](t, do(t, h, http.MethodGet, "/api/canvases", ""))
	if list.Count != 0 || list.Results == nil {
		t.Fatalf("Expected an empty list, got %+v", list)
	}

	body := jsonBody(t, map[string]any{
		"name":          "Campus",
		"description":   "HQ and branch",
		"topology_data": map[string]any{"zoom": 1.5},
	})
	rr := do(t, h, http.MethodPost, "/api/canvases", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	created := decode[canvas.Canvas](t, rr)
	if created.ID <= 0 || created.Name != "Campus" || created.Created.IsZero() {
		t.Fatalf("unexpected canvas %+v", created)
	}
	path := "/api/canvases/" + strconv.FormatInt(created.ID, 10)
	if loc := rr.Header().Get("Location"); loc != path {
		t.Errorf("Location = %q, want %q", loc, path)
	}

	got := decode[canvas.Canvas](t, do(t, h, http.MethodGet, path, ""))
	var data map[string]float64
	if err := json.Unmarshal(got.TopologyData, &data); err != nil || data["zoom"] != 1.5 {
		t.Errorf("topology_data = %s", got.TopologyData)
	}

	rr = do(t, h, http.MethodPut, path, `{"name":"Campus v2"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d. Body: %s", rr.Code, rr.Body.String())
	}
	updated := decode[canvas.Canvas](t, rr)
	if updated.Name != "Campus v2" || string(updated.TopologyData) != "{}" {
		t.Errorf("unexpected update %+v", updated)
	}
	if updated.LastUpdated.Before(updated.Created) {
		t.Error("last_updated precedes created")
	}

	list = decode[CanvasListResponse](t, do(t, h, http.MethodGet, "/api/canvases", ""))
	if list.Count != 1 || list.Results[0].ID != created.ID {
		t.Errorf("unexpected list %+v", list)
	}

	if rr := do(t, h, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 on delete, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, path, ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rr.Code)
	}
}

func TestCanvasValidation(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"description":"x"}`},
		{"long name", `{"name":"` + strings.Repeat("n", 101) + `"}`},
		{"long description", `{"name":"ok","description":"` + strings.Repeat("d", 201) + `"}`},
		{"array topology", `{"name":"ok","topology_data":[1]}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/canvases", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d. Body: %s", rr.Code, rr.Body.String())
			}
			if resp := decode[ErrorResponse](t, rr); resp.Message == "" {
				t.Error("error message is empty")
			}
		})
	}

	if n, _ := server.canvases.Count(t.Context()); n != 0 {
		t.Errorf("rejected input created %d canvases", n)
	}
}

func TestCanvasNotFoundAndBadID(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rr := do(t, h, method, "/api/canvases/42", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", method, rr.Code)
		}
		if resp := decode[ErrorResponse](t, rr); resp.Message != "Canvas not found" {
			t.Errorf("%s: message = %q", method, resp.Message)
		}
	}
	if rr := do(t, h, http.MethodPut, "/api/canvases/42", `{"name":"x"}`); rr.Code != http.StatusNotFound {
		t.Errorf("PUT: expected 404, got %d", rr.Code)
	}

	for _, path := range []string{"/api/canvases/abc", "/api/canvases/0", "/api/canvases/-1"} {
		if rr := do(t, h, http.MethodGet, path, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestCanvasMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	rr := do(t, h, http.MethodDelete, "/api/canvases", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q", allow)
	}

	rr = do(t, h, http.MethodPost, "/api/canvases/1", `{"name":"x"}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "GET, PUT, DELETE" {
		t.Errorf("Allow = %q", allow)
	}
}
