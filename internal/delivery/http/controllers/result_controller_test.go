package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
)

type mockResultService struct {
	result *domain.ParticipantResult
	err    error

	lastViewer domain.ResultViewer
	called     bool
}

func (m *mockResultService) GetResult(_ context.Context, _, _ string, viewer domain.ResultViewer) (*domain.ParticipantResult, error) {
	m.called = true
	m.lastViewer = viewer
	return m.result, m.err
}

func TestResultController_GetResult(t *testing.T) {
	tests := []struct {
		name           string
		participantID  string
		userID         string
		token          string
		err            error
		wantStatus     int
		wantViewer     domain.ResultViewer
		wantBodySubstr string
	}{
		{
			name: "own user", participantID: participantID, userID: "u1",
			wantStatus: http.StatusOK, wantViewer: domain.ResultViewer{UserID: "u1"}, wantBodySubstr: `"receiver_name":"Bob"`,
		},
		{
			name: "access token", participantID: participantID, token: " secret-token ",
			wantStatus: http.StatusOK, wantViewer: domain.ResultViewer{AccessToken: "secret-token"},
		},
		{name: "no credentials", participantID: participantID, wantStatus: http.StatusUnauthorized},
		{name: "invalid participant id", participantID: "p1", userID: "u1", wantStatus: http.StatusBadRequest},
		{name: "forbidden", participantID: participantID, userID: "u9", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "not drawn", participantID: participantID, userID: "u1", err: domain.ErrNotDrawn, wantStatus: http.StatusConflict},
		{name: "unknown participant", participantID: participantID, userID: "u1", err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "service error", participantID: participantID, userID: "u1", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockResultService{
				result: &domain.ParticipantResult{GroupID: groupID, ParticipantID: participantID, ReceiverID: otherID, ReceiverName: "Bob"},
				err:    tt.err,
			}
			ctrl := NewResultController(testLogger, svc)

			req := httptest.NewRequest(http.MethodGet, "/groups/"+groupID+"/participants/"+tt.participantID+"/result", nil)
			req.SetPathValue("groupID", groupID)
			req.SetPathValue("participantID", tt.participantID)
			if tt.userID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.userID))
			}
			if tt.token != "" {
				req.Header.Set(middleware.ParticipantTokenHeader, tt.token)
			}
			w := httptest.NewRecorder()
			ctrl.GetResult(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && svc.lastViewer != tt.wantViewer {
				t.Errorf("viewer = %+v, want %+v", svc.lastViewer, tt.wantViewer)
			}
			if (tt.wantStatus == http.StatusUnauthorized || tt.wantStatus == http.StatusBadRequest) && svc.called {
				t.Error("service should not be called")
			}
			if tt.wantBodySubstr != "" && !strings.Contains(w.Body.String(), tt.wantBodySubstr) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.wantBodySubstr)
			}
		})
	}
}
