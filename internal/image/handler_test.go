package image

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/service/internal/response"
)

func newTestRouter(t *testing.T) (*chi.Mux, *fakeStore, *fakeRecords) {
	t.Helper()
	store := newFakeStore()
	records := newFakeRecords()
	h := NewHandler(NewService(store, records, time.Second))

	r := chi.NewRouter()
	r.Get("/projects/{projectID}/images", h.List)
	r.Post("/projects/{projectID}/images", h.Upload)
	r.Put("/projects/{projectID}/images/{imageID}", h.Replace)
	r.Delete("/images/{imageID}", h.Delete)
	return r, store, records
}

func multipartBody(t *testing.T, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHandlerUpload(t *testing.T) {
	router, store, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "shot.png", "image/png", []byte("pngbytes"))
	req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("success = false: %s", rec.Body.String())
	}
	if len(store.objects) != 1 {
		t.Fatalf("stored objects = %d, want 1", len(store.objects))
	}
}

func TestHandlerUploadErrors(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/images", bytes.NewReader(nil))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Code != CodeNoFile {
			t.Fatalf("code = %s, want %s", env.Code, CodeNoFile)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		router, store, _ := newTestRouter(t)

		body, contentType := multipartBody(t, "cv.pdf", "application/pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/projects/proj-1/images", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Code != CodeInvalidFileType {
			t.Fatalf("code = %s, want %s", env.Code, CodeInvalidFileType)
		}
		if store.puts != 0 {
			t.Fatal("rejected upload reached the store")
		}
	})

	t.Run("owner missing", func(t *testing.T) {
		router, _, records := newTestRouter(t)
		records.createErr = ErrOwnerNotFound

		body, contentType := multipartBody(t, "shot.png", "image/png", []byte("pngbytes"))
		req := httptest.NewRequest(http.MethodPost, "/projects/missing/images", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Code != CodeOwnerNotFound {
			t.Fatalf("code = %s, want %s", env.Code, CodeOwnerNotFound)
		}
	})
}

func TestHandlerListAndDelete(t *testing.T) {
	router, _, records := newTestRouter(t)

	seeded, err := records.Create(context.Background(), "proj-1", "https://store/portfolio-images/a.png", "portfolio-images/a.png")
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/proj-1/images", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/images/"+seeded.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/images/"+seeded.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandlerReplaceWrongOwner(t *testing.T) {
	router, _, records := newTestRouter(t)

	seeded, err := records.Create(context.Background(), "proj-1", "https://store/portfolio-images/a.png", "portfolio-images/a.png")
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	body, contentType := multipartBody(t, "shot.png", "image/png", []byte("pngbytes"))
	req := httptest.NewRequest(http.MethodPut, "/projects/other-project/images/"+seeded.ID, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if _, err := records.GetByID(context.Background(), seeded.ID); err != nil {
		t.Fatal("record must survive a rejected replace")
	}
}
