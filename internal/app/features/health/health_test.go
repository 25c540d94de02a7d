package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskdeck/taskdeck/internal/testutil"
	"go.uber.org/zap"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	testutil.DecodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("resp = %+v", resp)
	}
}
