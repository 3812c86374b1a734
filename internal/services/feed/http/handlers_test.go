package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devquest/internal/core/stack"
	phttp "devquest/internal/platform/net/http"
	"devquest/internal/services/feed/domain"

	"github.com/go-chi/chi/v5"
)

type stubSvc struct{ got []domain.FeedQuery }

func (s *stubSvc) Feed(_ context.Context, in domain.FeedQuery) (domain.FeedView, error) {
	s.got = append(s.got, in)
	return domain.FeedView{UserID: in.UserID, Items: []stack.FeedItem{}}, nil
}

func post(t *testing.T, svc domain.ServicePort, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), svc)
	req := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestFeed(t *testing.T) {
	svc := &stubSvc{}
	rec := post(t, svc, `{"user_id":"u1","limit":25}`)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.got) != 1 || svc.got[0].Limit != 25 {
		t.Fatalf("got = %+v", svc.got)
	}
}

func TestFeed_Validation(t *testing.T) {
	svc := &stubSvc{}
	for _, body := range []string{`{}`, `{"user_id":"u1","limit":0.5}`, `{"user_id":"u1","limit":5000}`, `not json`} {
		if rec := post(t, svc, body); rec.Code != stdhttp.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
	if len(svc.got) != 0 {
		t.Fatalf("service called on invalid input")
	}
}
