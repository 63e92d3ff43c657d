package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method      string
	path        string
	query       string
	contentType string
	body        string
}

func newTestStorage(t *testing.T, status int) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	client := newClient(srv.Client(), srv.URL, config.GCSConfig{BucketName: "pets", PublicBaseURL: "https://cdn.test/"}, nil)
	return client, &calls
}

func TestUploadReturnsPublicURL(t *testing.T) {
	client, calls := newTestStorage(t, http.StatusOK)

	url, err := client.Upload(context.Background(), "/pets/abc.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/pets/pets/abc.jpg", url)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	require.Equal(t, http.MethodPost, call.method)
	require.Equal(t, "/upload/storage/v1/b/pets/o", call.path)
	require.Contains(t, call.query, "uploadType=media")
	require.Contains(t, call.query, "name=pets%2Fabc.jpg")
	require.Equal(t, "image/jpeg", call.contentType)
	require.Equal(t, "jpegbytes", call.body)
}

func TestUploadFailureStatus(t *testing.T) {
	client, _ := newTestStorage(t, http.StatusForbidden)
	_, err := client.Upload(context.Background(), "x.png", "", strings.NewReader("x"))
	require.Error(t, err)

	_, err = client.Upload(context.Background(), "  ", "", strings.NewReader("x"))
	require.Error(t, err)
}

func TestPingAndDelete(t *testing.T) {
	client, calls := newTestStorage(t, http.StatusOK)
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Delete(context.Background(), "a.png"))
	require.Equal(t, "/storage/v1/b/pets", (*calls)[0].path)
	require.Equal(t, http.MethodDelete, (*calls)[1].method)

	missing, _ := newTestStorage(t, http.StatusNotFound)
	require.NoError(t, missing.Delete(context.Background(), "gone.png"))
	require.Error(t, missing.Ping(context.Background()))
}

func TestNilClientPing(t *testing.T) {
	var c *Client
	require.Error(t, c.Ping(context.Background()))
	require.Equal(t, "", c.DefaultBucket())
}
