package assets

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/platform/resilience"
	"github.com/qchockey/lheqstats/internal/usecase"
)

var errLogoTransient = crerr.New("logo transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client downloads team logos from the gamesheet CDN. The CDN flaps under
// scrape bursts, so downloads go through singleflight, bounded retries,
// and a circuit breaker; callers treat every failure as skippable.
type Client struct {
	httpClient     *fasthttp.Client
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type fetchedImage struct {
	data []byte
	ext  string
}

// FetchImage downloads one logo and reports the file extension implied by
// its content type. Identical URLs requested concurrently share a single
// download.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, "", fmt.Errorf("logo url %q is not an absolute http url", rawURL)
	}
	fullURL := parsed.String()

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "logo circuit breaker rejected request", "state", c.breaker.State())
			return nil, "", fmt.Errorf("%w: logo source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		img, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if isLogoCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return img, reqErr
	})
	if err != nil {
		return nil, "", err
	}

	img, ok := out.(fetchedImage)
	if !ok {
		return nil, "", fmt.Errorf("unexpected download payload type %T", out)
	}
	return img.data, img.ext, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) (fetchedImage, error) {
	var lastErr error
	trail := make([]string, 0, c.maxRetries+1)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		img, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return img, nil
		}
		lastErr = err
		trail = append(trail, fmt.Sprintf("attempt %d: %v", attempt+1, err))
		if !stderrors.Is(err, errLogoTransient) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fetchedImage{}, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "logo download failed", "url", fullURL, "attempts", formatAttemptTrail(trail))
	return fetchedImage{}, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) (fetchedImage, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "image/*")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.httpClient.DoDeadline(req, resp, deadline)
	} else {
		err = c.httpClient.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return fetchedImage{}, fmt.Errorf("%w: send request: %v", errLogoTransient, err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		if isRetryableStatus(status) {
			return fetchedImage{}, fmt.Errorf("%w: logo host status=%d", errLogoTransient, status)
		}
		return fetchedImage{}, fmt.Errorf("logo host status=%d", status)
	}

	body := resp.Body()
	if len(body) == 0 {
		return fetchedImage{}, fmt.Errorf("logo host returned an empty body")
	}

	// The response buffer is recycled on release, so the image escapes
	// through a copy.
	data := make([]byte, len(body))
	copy(data, body)

	return fetchedImage{
		data: data,
		ext:  extensionFor(string(resp.Header.ContentType()), fullURL),
	}, nil
}

func extensionFor(contentType, rawURL string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	switch ct {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	case "image/webp":
		return "webp"
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if ext := strings.TrimPrefix(path.Ext(parsed.Path), "."); ext != "" {
			return strings.ToLower(ext)
		}
	}
	return "png"
}

func formatAttemptTrail(attempts []string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, attempt := range attempts {
		if buf.Len() > 0 {
			_, _ = buf.WriteString("; ")
		}
		_, _ = buf.WriteString(attempt)
	}
	return buf.String()
}

func isLogoCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errLogoTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
