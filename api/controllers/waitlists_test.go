package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

type stubWaitlistService struct {
	entry     *models.WaitlistEntry
	list      []models.WaitlistEntry
	err       error
	removedID uuid.UUID
}

func (s *stubWaitlistService) Join(context.Context, uuid.UUID, uuid.UUID) (*models.WaitlistEntry, error) {
	return s.entry, s.err
}

func (s *stubWaitlistService) SelectNext(context.Context, uuid.UUID) (*models.WaitlistEntry, error) {
	return s.entry, s.err
}

func (s *stubWaitlistService) Remove(_ context.Context, entryID uuid.UUID) error {
	s.removedID = entryID
	return s.err
}

func (s *stubWaitlistService) ListByProgram(context.Context, uuid.UUID) ([]models.WaitlistEntry, error) {
	return s.list, s.err
}

func TestWaitlistJoinSuccess(t *testing.T) {
	programID := uuid.New()
	userID := uuid.New()
	svc := &stubWaitlistService{entry: &models.WaitlistEntry{
		ID:        uuid.New(),
		UserID:    userID,
		ProgramID: programID,
		Position:  3,
		Status:    enums.WaitlistStatusWaiting,
	}}
	handler := WaitlistJoin(svc, nil)

	body := []byte(`{"user_id":"` + userID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs/"+programID.String()+"/waitlist", bytes.NewReader(body))
	req = withURLParam(req, "programId", programID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data waitlistEntryResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Position != 3 {
		t.Fatalf("expected position 3 got %d", envelope.Data.Position)
	}
}

func TestWaitlistJoinDuplicate(t *testing.T) {
	programID := uuid.New()
	svc := &stubWaitlistService{err: pkgerrors.New(pkgerrors.CodeConflict, "already on the waitlist")}
	handler := WaitlistJoin(svc, nil)

	body := []byte(`{"user_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs/"+programID.String()+"/waitlist", bytes.NewReader(body))
	req = withURLParam(req, "programId", programID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestWaitlistSelectNextEmptyQueue(t *testing.T) {
	programID := uuid.New()
	svc := &stubWaitlistService{err: pkgerrors.New(pkgerrors.CodeNotFound, "waitlist is empty")}
	handler := WaitlistSelectNext(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/programs/"+programID.String()+"/waitlist/select-next", nil)
	req = withURLParam(req, "programId", programID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestWaitlistRemovePassesEntryID(t *testing.T) {
	entryID := uuid.New()
	svc := &stubWaitlistService{}
	handler := WaitlistRemove(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/waitlist-entries/"+entryID.String(), nil)
	req = withURLParam(req, "entryId", entryID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.removedID != entryID {
		t.Fatalf("expected removal of %s got %s", entryID, svc.removedID)
	}
}

func TestWaitlistListOrdersByPosition(t *testing.T) {
	programID := uuid.New()
	svc := &stubWaitlistService{list: []models.WaitlistEntry{
		{ID: uuid.New(), ProgramID: programID, Position: 1, Status: enums.WaitlistStatusWaiting},
		{ID: uuid.New(), ProgramID: programID, Position: 2, Status: enums.WaitlistStatusWaiting},
	}}
	handler := WaitlistList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/"+programID.String()+"/waitlist", nil)
	req = withURLParam(req, "programId", programID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []waitlistEntryResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[0].Position != 1 {
		t.Fatalf("unexpected list %+v", envelope.Data)
	}
}
