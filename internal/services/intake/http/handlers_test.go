package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	phttp "devquest/internal/platform/net/http"
	"devquest/internal/services/intake/domain"

	"github.com/go-chi/chi/v5"
)

type stubSvc struct {
	got []domain.RawEventInput
	err error
	dup bool
}

func (s *stubSvc) Ingest(_ context.Context, in domain.RawEventInput) (domain.IngestResult, error) {
	s.got = append(s.got, in)
	if s.err != nil {
		return domain.IngestResult{}, s.err
	}
	return domain.IngestResult{EventID: in.ExternalID, Duplicate: s.dup}, nil
}

func post(t *testing.T, svc domain.IngestPort, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), svc)
	req := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const event = `{"external_id":"ev-1","provider_event_kind":"push","user_id":"u1","payload":{"ref":"refs/heads/main"}}`

func TestIngest_OK(t *testing.T) {
	svc := &stubSvc{}
	rec := post(t, svc, event)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.got) != 1 || svc.got[0].ExternalID != "ev-1" {
		t.Fatalf("got = %+v", svc.got)
	}
}

func TestIngest_DuplicateIsOK(t *testing.T) {
	rec := post(t, &stubSvc{dup: true}, event)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"duplicate":true`) {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestIngest_Validation(t *testing.T) {
	svc := &stubSvc{}
	for name, body := range map[string]string{
		"missing user":    `{"external_id":"ev-1","provider_event_kind":"push","payload":{}}`,
		"missing id":      `{"provider_event_kind":"push","user_id":"u1","payload":{}}`,
		"missing payload": `{"external_id":"ev-1","provider_event_kind":"push","user_id":"u1"}`,
	} {
		if rec := post(t, svc, body); rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
	if len(svc.got) != 0 {
		t.Fatalf("service called on invalid input: %+v", svc.got)
	}
}

func TestIngest_Unclassifiable(t *testing.T) {
	rec := post(t, &stubSvc{err: domain.ErrUnclassifiable}, event)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}
