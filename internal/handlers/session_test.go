package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/session"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

func TestLoginRequiresIdentity(t *testing.T) {
	mgr := &stubSessionManager{}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionMgr: mgr})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	h.SessionRoutes().ServeHTTP(httptest.NewRecorder(), req)

	if mgr.login != nil {
		t.Fatalf("Login must not be called for a guest")
	}
	if !resp.writeErrorCalled || resp.writeErrorStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401")
	}
}

func TestLoginReturnsSnapshot(t *testing.T) {
	sess := session.New(nil, nil, helpers.TestLogger())
	sess.Dispatch(state.AddCategory{Category: "Pets"})
	mgr := &stubSessionManager{sess: sess}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionMgr: mgr})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), models.Identity{UID: "u1", Email: "ann@example.com"}))
	h.SessionRoutes().ServeHTTP(httptest.NewRecorder(), req)

	if mgr.login == nil || mgr.login.UID != "u1" {
		t.Fatalf("Login called with %+v", mgr.login)
	}
	got, ok := resp.writeSuccessData.(dto.StateResponse)
	if !ok {
		t.Fatalf("unexpected data %T", resp.writeSuccessData)
	}
	found := false
	for _, c := range got.State.Categories {
		found = found || c == "Pets"
	}
	if !found {
		t.Fatalf("snapshot missing dispatched category")
	}
}

func TestLoginSyncError(t *testing.T) {
	mgr := &stubSessionManager{err: errors.New("sync failed")}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionMgr: mgr})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), models.Identity{UID: "u1"}))
	h.SessionRoutes().ServeHTTP(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || resp.writeSuccessCalled {
		t.Fatalf("expected error to be handled")
	}
}

func TestLogout(t *testing.T) {
	mgr := &stubSessionManager{}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionMgr: mgr})

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), models.Identity{UID: "u1"}))
	h.SessionRoutes().ServeHTTP(httptest.NewRecorder(), req)

	if mgr.loggedOut != "u1" || !resp.writeSuccessCalled {
		t.Fatalf("logout not completed for u1: %q", mgr.loggedOut)
	}
}

func TestGetStateGuest(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp})

	req, _ := newRequest(http.MethodGet, "/state", "")
	h.GetState(httptest.NewRecorder(), req)

	got, ok := resp.writeSuccessData.(dto.StateResponse)
	if !ok || got.Identity != nil {
		t.Fatalf("expected guest state, got %+v", resp.writeSuccessData)
	}
	if len(got.State.Categories) == 0 {
		t.Fatalf("expected built-in categories")
	}
}
