package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	scope           = "https://www.googleapis.com/auth/devstorage.read_write"
	defaultEndpoint = "https://storage.googleapis.com"
	pingTimeout     = 5 * time.Second
	requestTimeout  = 30 * time.Second
)

// Client uploads and removes objects through the Cloud Storage JSON API.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	publicBaseURL string
	defaultBucket string
	logg          *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer, msg string) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, msg)
	}
}

// NewClient resolves credentials (inline JSON, credentials file, then
// application default credentials) and verifies the bucket is reachable.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	ts, err := tokenSource(ctx, gcp)
	if err != nil {
		return nil, err
	}

	base := &http.Client{Timeout: requestTimeout}
	oauthCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := newClient(oauth2.NewClient(oauthCtx, ts), defaultEndpoint, cfg, logg)

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}
	return client, nil
}

func newClient(httpClient *http.Client, endpoint string, cfg config.GCSConfig, logg *logger.Logger) *Client {
	public := strings.TrimRight(cfg.PublicBaseURL, "/")
	if public == "" {
		public = defaultEndpoint
	}
	return &Client{
		httpClient:    httpClient,
		endpoint:      strings.TrimRight(endpoint, "/"),
		publicBaseURL: public,
		defaultBucket: cfg.BucketName,
		logg:          logg,
	}
}

func tokenSource(ctx context.Context, gcp config.GCPConfig) (oauth2.TokenSource, error) {
	switch {
	case gcp.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(gcp.CredentialsJSON), scope)
		if err != nil {
			return nil, fmt.Errorf("parsing gcp credentials: %w", err)
		}
		return creds.TokenSource, nil
	case gcp.ApplicationCredentials != "":
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, scope)
		if err != nil {
			return nil, fmt.Errorf("parsing gcp credentials: %w", err)
		}
		return creds.TokenSource, nil
	default:
		ts, err := google.DefaultTokenSource(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("default gcp credentials: %w", err)
		}
		return ts, nil
	}
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Ping fetches the bucket metadata.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/storage/v1/b/"+url.PathEscape(c.defaultBucket), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs ping body close failed")
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gcs bucket %s: status %d", c.defaultBucket, resp.StatusCode)
	}
	return nil
}

// Upload streams body into object name and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", name)
	endpoint := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.endpoint, url.PathEscape(c.defaultBucket), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs upload body close failed")
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return c.PublicURL(name), nil
}

// Delete removes object name. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.defaultBucket), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs delete body close failed")
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("delete %s: status %d", name, resp.StatusCode)
	}
	return nil
}

// PublicURL is where a public-read object is served from.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.defaultBucket, strings.TrimLeft(name, "/"))
}
