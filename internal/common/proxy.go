package common

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	OK                     int = 200
	BAD_REQUEST            int = 400
	UNAUTHORIZED           int = 401
	FORBIDDEN              int = 403
	DATA_NOT_FOUND         int = 404
	METHOD_NOT_ALLOWED     int = 405
	UNSUPPORTED_MEDIA_TYPE int = 415
	RATE_LIMIT_EXCEEDED    int = 429
	INTERNAL_SERVER_ERROR  int = 500
	BAD_GATEWAY            int = 502
	SERVICE_UNAVAILABLE    int = 503
	GATEWAY_TIMEOUT        int = 504
)

var messages = map[int]string{
	OK:                     "OK",
	BAD_REQUEST:            "Bad request",
	UNAUTHORIZED:           "Unauthorized",
	FORBIDDEN:              "Forbidden",
	DATA_NOT_FOUND:         "Data not found",
	METHOD_NOT_ALLOWED:     "Method not allowed",
	UNSUPPORTED_MEDIA_TYPE: "Unsupported media type",
	RATE_LIMIT_EXCEEDED:    "Rate limit exceeded",
	INTERNAL_SERVER_ERROR:  "Internal server error",
	BAD_GATEWAY:            "Bad gateway",
	SERVICE_UNAVAILABLE:    "Service unavailable",
	GATEWAY_TIMEOUT:        "Gateway timeout",
}

// StatusMessage returns a short description of the status code
func StatusMessage(code int) string {
	if message, ok := messages[code]; ok {
		return message
	}
	return "Unknown status"
}

// What came back from a request. The body is returned whatever the status code
type Reply struct {
	StatusCode int
	Body       []byte
}

// The proxy owns the http client shared by the whole process.
// Call Close when shutting down
type Proxy struct {
	header      map[string]string
	client      *http.Client
	rateLimiter *RateLimiter
}

func NewProxy(header map[string]string, timeout time.Duration, rateLimiter *RateLimiter) *Proxy {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	return &Proxy{
		header:      header,
		client:      &http.Client{Timeout: timeout, Transport: transport},
		rateLimiter: rateLimiter,
	}
}

// Make a GET request to the provided url, after the rate limiter allows it.
// There is no retry and no check on the status code
func (proxy *Proxy) Request(ctx context.Context, url string) (Reply, error) {

	// ask for permission to execute the request
	// and wait if necessary
	if proxy.rateLimiter != nil {
		if err := proxy.rateLimiter.Wait(ctx); err != nil {
			return Reply{}, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reply{}, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	log.Debug().Msg(fmt.Sprintf("Requesting to url %s", url))
	res, err := proxy.client.Do(request)
	if err != nil {
		return Reply{}, fmt.Errorf("could not perform request to %s: %w", url, err)
	}
	defer res.Body.Close()
	log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, StatusMessage(res.StatusCode)))

	if res.StatusCode == RATE_LIMIT_EXCEEDED && proxy.rateLimiter != nil {
		proxy.rateLimiter.ReceivedRateLimit()
	}

	// Read the response
	stream, err := io.ReadAll(res.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("could not extract the response for url %s: %w", url, err)
	}
	return Reply{StatusCode: res.StatusCode, Body: stream}, nil
}

// Release the idle connections held by the client
func (proxy *Proxy) Close() {
	proxy.client.CloseIdleConnections()
}
