package projects

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"github.com/taskdeck/taskdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	r := chi.NewRouter()
	r.Mount("/projects", Routes(NewHandler(db, nil, zap.NewNop())))
	return r, f, db
}

func do(t *testing.T, router chi.Router, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func roleOf(p models.Project, u models.User) (string, bool) {
	for _, m := range p.Members {
		if m.ID == u.ID {
			return m.Role, true
		}
	}
	return "", false
}

func TestCreateProject(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	ana := f.CreateUser(ctx, "Ana", "A", "ana@example.com")
	rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, "/projects/",
		map[string]string{"title": "Apollo", "description": "moon shot"}, ana))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var p models.Project
	testutil.DecodeBody(t, rec, &p)
	if role, ok := roleOf(p, ana); !ok || role != models.RoleManager {
		t.Errorf("creator role = %q (present %v), want manager", role, ok)
	}

	rec = do(t, router, testutil.AuthedRequest(t, http.MethodPost, "/projects/",
		map[string]string{"title": "   "}, ana))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title: status = %d, want 400", rec.Code)
	}
}

func TestGetScopedToMembers(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	outsider := f.CreateUser(ctx, "Out", "O", "out@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr, dev)

	url := "/projects/" + p.ID.Hex()
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodGet, url, nil, dev)); rec.Code != http.StatusOK {
		t.Errorf("member get: status %d", rec.Code)
	}
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodGet, url, nil, outsider)); rec.Code != http.StatusNotFound {
		t.Errorf("outsider get: status = %d, want 404", rec.Code)
	}
}

func TestListPagination(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	ana := f.CreateUser(ctx, "Ana", "A", "ana@example.com")
	for i := 0; i < 3; i++ {
		f.CreateProject(ctx, fmt.Sprintf("p%d", i), ana)
	}

	rec := do(t, router, testutil.AuthedRequest(t, http.MethodGet, "/projects/", nil, ana))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var out []models.Project
	testutil.DecodeBody(t, rec, &out)
	if len(out) != 3 {
		t.Errorf("len = %d, want 3", len(out))
	}

	rec = do(t, router, testutil.AuthedRequest(t, http.MethodGet, "/projects/?after="+out[0].ID.Hex(), nil, ana))
	testutil.DecodeBody(t, rec, &out)
	if len(out) != 2 {
		t.Errorf("after cursor: len = %d, want 2", len(out))
	}

	rec = do(t, router, testutil.AuthedRequest(t, http.MethodGet, "/projects/?after=zzz", nil, ana))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad cursor: status = %d, want 400", rec.Code)
	}
}

func TestDeleteCascadesTasks(t *testing.T) {
	router, f, db := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr, dev)
	task := f.CreateTask(ctx, p, "t", models.StateNotStarted, models.PriorityLow, nil)

	url := "/projects/" + p.ID.Hex()
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodDelete, url, nil, dev)); rec.Code != http.StatusNotFound {
		t.Errorf("member delete: status = %d, want 404", rec.Code)
	}
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodDelete, url, nil, mgr)); rec.Code != http.StatusNoContent {
		t.Fatalf("manager delete: status %d", rec.Code)
	}
	if _, err := taskstore.New(db).GetInProject(ctx, task.ID, p.ID); err == nil {
		t.Error("task survived project deletion")
	}
}

func TestMemberLifecycle(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr)

	add := "/projects/" + p.ID.Hex() + "/members/" + dev.Email
	rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, add, nil, mgr))
	if rec.Code != http.StatusOK {
		t.Fatalf("add member: status %d, body %s", rec.Code, rec.Body)
	}
	var got models.Project
	testutil.DecodeBody(t, rec, &got)
	if role, ok := roleOf(got, dev); !ok || role != models.RoleMember {
		t.Errorf("added role = %q (present %v)", role, ok)
	}

	// Re-adding conflicts.
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, add, nil, mgr)); rec.Code != http.StatusConflict {
		t.Errorf("re-add: status = %d, want 409", rec.Code)
	}

	// Unknown target email.
	ghost := "/projects/" + p.ID.Hex() + "/members/ghost@example.com"
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, ghost, nil, mgr)); rec.Code != http.StatusNotFound {
		t.Errorf("unknown email: status = %d, want 404", rec.Code)
	}

	remove := "/projects/" + p.ID.Hex() + "/members/" + dev.Email
	rec = do(t, router, testutil.AuthedRequest(t, http.MethodDelete, remove, nil, mgr))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove member: status %d, body %s", rec.Code, rec.Body)
	}
	testutil.DecodeBody(t, rec, &got)
	if _, ok := roleOf(got, dev); ok {
		t.Error("member still present after removal")
	}
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodDelete, remove, nil, mgr)); rec.Code != http.StatusConflict {
		t.Errorf("re-remove: status = %d, want 409", rec.Code)
	}
}

func TestRemoveMemberUnassignsTasks(t *testing.T) {
	router, f, db := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr, dev)
	task := f.CreateTask(ctx, p, "t", models.StateInProgress, models.PriorityLow, &dev)

	url := "/projects/" + p.ID.Hex() + "/members/" + dev.Email
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodDelete, url, nil, mgr)); rec.Code != http.StatusOK {
		t.Fatalf("remove: status %d", rec.Code)
	}

	got, err := taskstore.New(db).GetInProject(ctx, task.ID, p.ID)
	if err != nil {
		t.Fatalf("refetch task: %v", err)
	}
	if got.AssignedTo != nil {
		t.Error("removed member still assigned")
	}
}

func TestPromoteAndDemote(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	outsider := f.CreateUser(ctx, "Out", "O", "out@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr, dev)

	promote := "/projects/" + p.ID.Hex() + "/managers/" + dev.Email
	rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, promote, nil, mgr))
	if rec.Code != http.StatusOK {
		t.Fatalf("promote: status %d, body %s", rec.Code, rec.Body)
	}
	var got models.Project
	testutil.DecodeBody(t, rec, &got)
	if role, _ := roleOf(got, dev); role != models.RoleManager {
		t.Errorf("promoted role = %q", role)
	}

	// Already a manager.
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, promote, nil, mgr)); rec.Code != http.StatusConflict {
		t.Errorf("re-promote: status = %d, want 409", rec.Code)
	}
	// Not a member at all.
	stranger := "/projects/" + p.ID.Hex() + "/managers/" + outsider.Email
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, stranger, nil, mgr)); rec.Code != http.StatusConflict {
		t.Errorf("promote stranger: status = %d, want 409", rec.Code)
	}

	demote := "/projects/" + p.ID.Hex() + "/managers/" + dev.Email
	rec = do(t, router, testutil.AuthedRequest(t, http.MethodDelete, demote, nil, mgr))
	if rec.Code != http.StatusOK {
		t.Fatalf("demote: status %d, body %s", rec.Code, rec.Body)
	}
	testutil.DecodeBody(t, rec, &got)
	if role, _ := roleOf(got, dev); role != models.RoleMember {
		t.Errorf("demoted role = %q", role)
	}
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodDelete, demote, nil, mgr)); rec.Code != http.StatusConflict {
		t.Errorf("re-demote: status = %d, want 409", rec.Code)
	}
}

func TestMembershipManagerGate(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx := testutil.TestContext(t)

	mgr := f.CreateUser(ctx, "Mia", "M", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "D", "dev@example.com")
	other := f.CreateUser(ctx, "New", "N", "new@example.com")
	p := f.CreateProject(ctx, "Apollo", mgr, dev)

	// A plain member cannot mutate membership; the gate answers 404.
	url := "/projects/" + p.ID.Hex() + "/members/" + other.Email
	if rec := do(t, router, testutil.AuthedRequest(t, http.MethodPost, url, nil, dev)); rec.Code != http.StatusNotFound {
		t.Errorf("member adds member: status = %d, want 404", rec.Code)
	}
}
