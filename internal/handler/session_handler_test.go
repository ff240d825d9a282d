package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/dto"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/service"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type sessionServiceMock struct {
	lastActor  models.Actor
	lastID     string
	lastFilter models.SessionFilter
	complete   dto.CompleteRequest
	doc        *service.DocumentUpload
	docBody    []byte
	calls      []string
	err        error
}

func (m *sessionServiceMock) view(id string) *dto.SessionView {
	return &dto.SessionView{Session: models.Session{ID: id, ActiveStatus: models.ActiveAccepted}}
}

func (m *sessionServiceMock) record(name string, actor models.Actor, id string) (*dto.SessionView, error) {
	m.calls = append(m.calls, name)
	m.lastActor = actor
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.view(id), nil
}

func (m *sessionServiceMock) List(_ context.Context, actor models.Actor, filter models.SessionFilter) ([]dto.SessionView, *models.Pagination, error) {
	m.lastActor = actor
	m.lastFilter = filter
	return []dto.SessionView{*m.view("apt-1")}, filter.Pagination(1), nil
}

func (m *sessionServiceMock) Get(_ context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return m.record("get", actor, id)
}

func (m *sessionServiceMock) Create(_ context.Context, actor models.Actor, req dto.CreateSessionRequest) (*dto.SessionView, error) {
	return m.record("create", actor, "new")
}

func (m *sessionServiceMock) Reschedule(_ context.Context, actor models.Actor, id string, req dto.RescheduleRequest) (*dto.SessionView, error) {
	return m.record("reschedule", actor, id)
}

func (m *sessionServiceMock) Accept(_ context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return m.record("accept", actor, id)
}

func (m *sessionServiceMock) Cancel(_ context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return m.record("cancel", actor, id)
}

func (m *sessionServiceMock) CancelByDonor(_ context.Context, actor models.Actor, id string) (*dto.SessionView, error) {
	return m.record("cancelD", actor, id)
}

func (m *sessionServiceMock) Arrive(_ context.Context, actor models.Actor, id string, req dto.ArriveRequest) (*dto.SessionView, error) {
	return m.record("arrive", actor, id)
}

func (m *sessionServiceMock) Complete(_ context.Context, actor models.Actor, id string, req dto.CompleteRequest, doc *service.DocumentUpload) (*dto.SessionView, error) {
	m.complete = req
	m.doc = doc
	if doc != nil {
		m.docBody, _ = io.ReadAll(doc.Body)
	}
	return m.record("complete", actor, id)
}

func (m *sessionServiceMock) Delete(_ context.Context, actor models.Actor, id string) error {
	_, err := m.record("delete", actor, id)
	return err
}

func TestSessionHandlerListFilters(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodGet, "/healthEvaluation?activeStatus=Pending&dateFrom=2026-01-01&page=2", nil)
	withClaims(c, staffClaims)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ActivePending, svc.lastFilter.ActiveStatus)
	require.NotNil(t, svc.lastFilter.DateFrom)
	assert.Equal(t, 2026, svc.lastFilter.DateFrom.Year())
	assert.Nil(t, svc.lastFilter.DateTo)
	assert.Equal(t, "hosp-1", svc.lastActor.HospitalID)
	assert.Equal(t, 2, decodeEnvelope(t, w).Pagination.Page)
}

func TestSessionHandlerListRejectsBadDate(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{})

	c, w := newGinContext(http.MethodGet, "/healthEvaluation?dateTo=01-02-2026", nil)
	withClaims(c, staffClaims)
	h.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerTransitions(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	for _, tc := range []struct {
		name string
		call func(h *SessionHandler) func(*gin.Context)
	}{
		{"accept", func(h *SessionHandler) func(*gin.Context) { return h.Accept }},
		{"cancel", func(h *SessionHandler) func(*gin.Context) { return h.Cancel }},
		{"cancelD", func(h *SessionHandler) func(*gin.Context) { return h.CancelByDonor }},
	} {
		c, w := newGinContext(http.MethodPatch, "/blooddonationappointment/apt-7/"+tc.name, nil)
		c.Params = gin.Params{{Key: "id", Value: "apt-7"}}
		withClaims(c, donorClaims)
		tc.call(h)(c)
		require.Equal(t, http.StatusOK, w.Code, tc.name)
	}
	assert.Equal(t, []string{"accept", "cancel", "cancelD"}, svc.calls)
	assert.Equal(t, "apt-7", svc.lastID)
}

func TestSessionHandlerTransitionError(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{err: appErrors.ErrInvalidTransition})

	c, w := newGinContext(http.MethodPatch, "/blooddonationappointment/apt-1/accept", nil)
	c.Params = gin.Params{{Key: "id", Value: "apt-1"}}
	withClaims(c, staffClaims)
	h.Accept(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeEnvelope(t, w).Error.Code)
}

func TestSessionHandlerArriveRequiresBody(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/blooddonationappointment/apt-1/arrived", bytes.NewBufferString("{"))
	c.Params = gin.Params{{Key: "id", Value: "apt-1"}}
	withClaims(c, staffClaims)
	h.Arrive(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.calls)
}

func TestSessionHandlerCompleteJSON(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/healthEvaluation/ev-1/complete", jsonBody(t, map[string]string{"passStatus": "Passed"}))
	c.Params = gin.Params{{Key: "id", Value: "ev-1"}}
	withClaims(c, staffClaims)
	h.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PassPassed, svc.complete.PassStatus)
	assert.Nil(t, svc.doc)
}

func TestSessionHandlerCompleteWithoutBody(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/blooddonationappointment/apt-1/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "apt-1"}}
	withClaims(c, staffClaims)
	h.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PassStatus(""), svc.complete.PassStatus)
}

func TestSessionHandlerCompleteMultipart(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("passStatus", "Failed"))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="document"; filename="result.pdf"`},
		"Content-Type":        {"application/pdf"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 result"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	c, w := newGinContext(http.MethodPatch, "/healthEvaluation/ev-2/complete", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "ev-2"}}
	withClaims(c, staffClaims)
	h.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PassFailed, svc.complete.PassStatus)
	require.NotNil(t, svc.doc)
	assert.Equal(t, "result.pdf", svc.doc.Filename)
	assert.Equal(t, "application/pdf", svc.doc.ContentType)
	assert.EqualValues(t, len("%PDF-1.4 result"), svc.doc.Size)
	assert.Equal(t, "%PDF-1.4 result", string(svc.docBody))
}

func TestSessionHandlerDelete(t *testing.T) {
	svc := &sessionServiceMock{}
	h := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodDelete, "/blooddonationappointment/apt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "apt-1"}}
	withClaims(c, donorClaims)
	h.Delete(c)
	require.Equal(t, http.StatusNoContent, w.Code)

	svc.err = appErrors.ErrDeletionNotAllowed
	c, w = newGinContext(http.MethodDelete, "/blooddonationappointment/apt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "apt-1"}}
	withClaims(c, donorClaims)
	h.Delete(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
