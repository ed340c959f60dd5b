package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"samplefetch/internal/models"
	"strings"
	"time"
)

const samplesPath = "Samples/"

// ObjectSource opens archives addressed as s3://bucket/key.
type ObjectSource interface {
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	objects    ObjectSource
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. A nil client is ignored.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithObjectSource(objects ObjectSource) Option {
	return func(c *Client) {
		c.objects = objects
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid registry URL %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid registry URL %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetString requests path relative to the registry base URL and returns the
// response body. An empty path requests the base URL itself.
func (c *Client) GetString(ctx context.Context, path string) (string, error) {
	target, err := c.resolve(path)
	if err != nil {
		return "", err
	}

	resp, err := c.get(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Target: target.String(), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return string(body), nil
}

func (c *Client) ListSamples(ctx context.Context) (models.Catalog, error) {
	body, err := c.GetString(ctx, "")
	if err != nil {
		return nil, err
	}
	return DecodeCatalog(body)
}

func (c *Client) GetSample(ctx context.Context, name string) (*models.Sample, error) {
	body, err := c.GetString(ctx, samplesPath+url.PathEscape(name))
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Name: name}
		}
		return nil, err
	}

	sample, err := DecodeSample(body)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, &NotFoundError{Name: name}
	}

	return sample, nil
}

// OpenArchive streams the archive at rawURL, which may be relative to the
// registry. The caller must close the returned reader.
func (c *Client) OpenArchive(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &FetchError{Target: rawURL, Err: errors.New("sample has no archive URL")}
	}

	target, err := c.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	if target.Scheme == "s3" {
		return c.openObject(ctx, target)
	}

	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) openObject(ctx context.Context, target *url.URL) (io.ReadCloser, error) {
	if c.objects == nil {
		return nil, &FetchError{Target: target.String(), Err: errors.New("no object store configured for s3 URLs")}
	}

	bucket := target.Host
	key := strings.TrimPrefix(target.Path, "/")
	if bucket == "" || key == "" {
		return nil, &FetchError{Target: target.String(), Err: errors.New("s3 URL must name a bucket and key")}
	}

	body, err := c.objects.OpenObject(ctx, bucket, key)
	if err != nil {
		return nil, &FetchError{Target: target.String(), Err: err}
	}

	return body, nil
}

func (c *Client) resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, &FetchError{Target: ref, Err: fmt.Errorf("invalid URL: %w", err)}
	}
	return c.baseURL.ResolveReference(parsed), nil
}

func (c *Client) get(ctx context.Context, target *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{Target: target.String(), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the method and target we already carry.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &FetchError{Target: target.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &FetchError{
			Target:     target.String(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return resp, nil
}
