package httpclient

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/rs/zerolog"
)

// RetryHandler retries content fetches on transport errors and on the
// configured status codes, backing off exponentially. Requests with a body
// are sent once since the body cannot be replayed.
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	EnableJitter     bool
	RetryStatusCodes []int
}

func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	codes := make(map[int]bool, len(config.RetryStatusCodes))
	for _, code := range config.RetryStatusCodes {
		codes[code] = true
	}
	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: codes,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// CalculateDelay returns baseDelay * 2^attempt, capped at maxDelay, plus up
// to 10% jitter when enabled.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.baseDelay << uint(attempt)
	if delay < rh.baseDelay || (rh.maxDelay > 0 && delay > rh.maxDelay) {
		delay = rh.maxDelay
	}
	if rh.enableJitter {
		if spread := int64(delay / 10); spread > 0 {
			delay += time.Duration(rand.Int63n(spread))
		}
	}
	return delay
}

// delayFor prefers a Retry-After header given in seconds, still capped at maxDelay.
func (rh *RetryHandler) delayFor(resp *HTTPResponse, attempt int) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Headers.Get("Retry-After"))); err == nil && secs >= 0 {
			delay := time.Duration(secs) * time.Second
			if rh.maxDelay > 0 && delay > rh.maxDelay {
				delay = rh.maxDelay
			}
			return delay
		}
	}
	return rh.CalculateDelay(attempt)
}

// DoWithRetry runs send until it succeeds, the status is not retryable or
// attempts run out. Context errors end the loop at once. When the last
// response still carries a retryable status it is returned together with a
// *common.HTTPError.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, send func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	attempts := rh.maxRetries + 1
	if req.Body != nil {
		attempts = 1
	}
	safe := SafeURL(req.URL)

	var resp *HTTPResponse
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		resp, err = send(req)
		switch {
		case err != nil && common.IsContextError(err):
			return nil, err
		case err == nil && !rh.retryStatusCodes[resp.StatusCode]:
			return resp, nil
		case attempt == attempts-1:
			continue
		}

		delay := rh.delayFor(resp, attempt)
		event := rh.logger.Debug().Str("url", safe).Int("attempt", attempt+1).Int("max_retries", rh.maxRetries).Dur("delay", delay)
		if err != nil {
			event.Err(err).Msg("Network error, retrying")
		} else {
			event.Int("status_code", resp.StatusCode).Msg("Retryable status, retrying")
		}
		if werr := common.WaitWithCancellation(ctx, delay); werr != nil {
			return nil, werr
		}
	}

	if err != nil {
		return nil, common.WrapError(err, "all retry attempts failed")
	}
	return resp, common.WrapError(common.NewHTTPErrorWithURL(resp.StatusCode, http.StatusText(resp.StatusCode), safe), "all retry attempts failed")
}
