package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camship/internal/domain"
)

func TestProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" && r.Method == http.MethodGet {
			_, _ = io.WriteString(w, "pong")
			return
		}
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProber(srv.Client(), nil)
	require.NoError(t, p.Probe(context.Background(), srv.URL+"/ping"))

	err := p.Probe(context.Background(), srv.URL+"/other")
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewProber(http.DefaultClient, nil).Probe(context.Background(), url+"/ping")
	assert.ErrorIs(t, err, domain.ErrConnect)
}

func TestStillUploader(t *testing.T) {
	var (
		gotLength   int64
		gotTransfer []string
		gotField    string
		gotFile     string
		gotData     []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		gotTransfer = r.TransferEncoding
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for field, files := range r.MultipartForm.File {
			gotField = field
			gotFile = files[0].Filename
			f, err := files[0].Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			gotData, _ = io.ReadAll(f)
			f.Close()
		}
		_, _ = io.WriteString(w, "saved")
	}))
	defer srv.Close()

	frame := domain.NewFrame([]byte("\xff\xd8jpeg\xff\xd9"))
	cfg := StillConfig{
		URL:         srv.URL + domain.DefaultStillPath,
		Boundary:    DefaultStillBoundary,
		FieldName:   "picture",
		Filename:    DefaultStillFilename,
		ContentType: "image/jpeg",
	}

	res, err := NewStillUploader(srv.Client(), nil).Upload(context.Background(), cfg, frame)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "saved", res.Body)

	assert.Positive(t, gotLength)
	assert.Empty(t, gotTransfer, "still uploads are not chunked")
	assert.Equal(t, "picture", gotField)
	assert.Equal(t, DefaultStillFilename, gotFile)
	assert.Equal(t, frame.Bytes(), gotData)
}

func TestStillUploader_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	res, err := NewStillUploader(srv.Client(), nil).Upload(context.Background(), StillConfig{
		URL: srv.URL, Boundary: "b", FieldName: "picture", Filename: "x.jpg", ContentType: "image/jpeg",
	}, domain.NewFrame([]byte("x")))

	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
	assert.Equal(t, http.StatusInsufficientStorage, res.StatusCode)
	assert.Contains(t, res.Body, "disk full")
}
