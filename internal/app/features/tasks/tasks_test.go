package tasks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"github.com/taskdeck/taskdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	r := chi.NewRouter()
	r.Mount("/projects/{projectID}/tasks", Routes(NewHandler(db, zap.NewNop())))
	return r, f
}

func taskURL(projectID primitive.ObjectID, rest string) string {
	return fmt.Sprintf("/projects/%s/tasks%s", projectID.Hex(), rest)
}

func TestUpdateLifecycle(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "One", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", manager, dev)
	task := f.CreateTask(ctx, p, "ship it", models.StateNotStarted, models.PriorityMedium, &dev)

	// The assignee moves the task forward.
	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{"state": models.StateInProgress}, dev)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("assignee IN_PROGRESS: status %d, body %s", rec.Code, rec.Body)
	}
	var got models.Task
	testutil.DecodeBody(t, rec, &got)
	if got.State != models.StateInProgress {
		t.Errorf("state = %q", got.State)
	}

	// The assignee may not complete it.
	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{"state": models.StateCompleted}, dev)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("assignee COMPLETED: status %d, body %s", rec.Code, rec.Body)
	}

	// The refused payload wrote nothing.
	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodGet, taskURL(p.ID, "/"+task.ID.Hex()), nil, dev)
	router.ServeHTTP(rec, req)
	testutil.DecodeBody(t, rec, &got)
	if got.State != models.StateInProgress {
		t.Errorf("state after refusal = %q, want %s", got.State, models.StateInProgress)
	}

	// The manager can.
	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{"state": models.StateCompleted}, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("manager COMPLETED: status %d, body %s", rec.Code, rec.Body)
	}
	testutil.DecodeBody(t, rec, &got)
	if got.State != models.StateCompleted {
		t.Errorf("state = %q", got.State)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateMixedPayloadAtomic(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "One", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", manager, dev)
	task := f.CreateTask(ctx, p, "ship it", models.StateNotStarted, models.PriorityMedium, &dev)

	// One denied field sinks the whole payload, including the allowed
	// state change.
	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{"title": "renamed", "state": models.StateInProgress}, dev)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodGet, taskURL(p.ID, "/"+task.ID.Hex()), nil, dev)
	router.ServeHTTP(rec, req)
	var got models.Task
	testutil.DecodeBody(t, rec, &got)
	if got.Title != "ship it" || got.State != models.StateNotStarted {
		t.Errorf("task mutated despite refusal: %q/%q", got.Title, got.State)
	}
}

func TestUpdateNonMemberForbidden(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	outsider := f.CreateUser(ctx, "Out", "Sider", "out@example.com")
	p := f.CreateProject(ctx, "Apollo", manager)
	task := f.CreateTask(ctx, p, "ship it", models.StateNotStarted, models.PriorityMedium, nil)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{"title": "hijacked"}, outsider)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestUpdateEmptyPayload(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	p := f.CreateProject(ctx, "Apollo", manager)
	task := f.CreateTask(ctx, p, "ship it", models.StateNotStarted, models.PriorityMedium, nil)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]string{}, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	p := f.CreateProject(ctx, "Apollo", manager)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+primitive.NewObjectID().Hex()),
		map[string]string{"title": "x"}, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateUnassign(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "One", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", manager, dev)
	task := f.CreateTask(ctx, p, "ship it", models.StateInProgress, models.PriorityMedium, &dev)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPatch, taskURL(p.ID, "/"+task.ID.Hex()),
		map[string]any{"assigned_to": nil}, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var got models.Task
	testutil.DecodeBody(t, rec, &got)
	if got.AssignedTo != nil {
		t.Errorf("assigned_to = %+v, want nil", got.AssignedTo)
	}
}

func TestCreateManagerOnly(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "One", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", manager, dev)

	body := map[string]string{"title": "new task", "priority": models.PriorityLow}

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodPost, taskURL(p.ID, "/"), body, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("manager create: status %d, body %s", rec.Code, rec.Body)
	}
	var got models.Task
	testutil.DecodeBody(t, rec, &got)
	if got.State != models.StateNotStarted || got.AssignedTo != nil {
		t.Errorf("new task = %q assigned %v", got.State, got.AssignedTo)
	}

	// The manager role check presents as a missing project.
	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodPost, taskURL(p.ID, "/"), body, dev)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("member create: status = %d, want 404", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	p := f.CreateProject(ctx, "Apollo", manager)

	cases := []map[string]string{
		{"title": "", "priority": models.PriorityLow},
		{"title": "x", "priority": "URGENT"},
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		req := testutil.AuthedRequest(t, http.MethodPost, taskURL(p.ID, "/"), body, manager)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestListScopedToMembers(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	outsider := f.CreateUser(ctx, "Out", "Sider", "out@example.com")
	p := f.CreateProject(ctx, "Apollo", manager)
	f.CreateTask(ctx, p, "a", models.StateNotStarted, models.PriorityLow, nil)
	f.CreateTask(ctx, p, "b", models.StateNotStarted, models.PriorityLow, nil)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodGet, taskURL(p.ID, "/"), nil, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	var out []models.Task
	testutil.DecodeBody(t, rec, &out)
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
	if rec.Header().Get("X-Has-Next") != "" {
		t.Errorf("X-Has-Next = %q, want unset", rec.Header().Get("X-Has-Next"))
	}

	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodGet, taskURL(p.ID, "/"), nil, outsider)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("outsider list: status = %d, want 404", rec.Code)
	}
}

func TestDeleteManagerOnly(t *testing.T) {
	router, f := newRouter(t)
	ctx := testutil.TestContext(t)

	manager := f.CreateUser(ctx, "Mia", "Manager", "mia@example.com")
	dev := f.CreateUser(ctx, "Dev", "One", "dev@example.com")
	p := f.CreateProject(ctx, "Apollo", manager, dev)
	task := f.CreateTask(ctx, p, "doomed", models.StateNotStarted, models.PriorityLow, nil)

	rec := httptest.NewRecorder()
	req := testutil.AuthedRequest(t, http.MethodDelete, taskURL(p.ID, "/"+task.ID.Hex()), nil, dev)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("member delete: status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodDelete, taskURL(p.ID, "/"+task.ID.Hex()), nil, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("manager delete: status %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	req = testutil.AuthedRequest(t, http.MethodDelete, taskURL(p.ID, "/"+task.ID.Hex()), nil, manager)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("re-delete: status = %d, want 404", rec.Code)
	}
}
