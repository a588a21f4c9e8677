package validators

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/rs/zerolog"
)

// Deps carries what every validator needs
type Deps struct {
	Client httpclient.Doer
	Config config.ValidatorConfig
	Logger zerolog.Logger
	// Now defaults to time.Now
	Now func() time.Time
	// Wait defaults to common.WaitWithCancellation
	Wait func(ctx context.Context, d time.Duration) error
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Wait == nil {
		d.Wait = common.WaitWithCancellation
	}
	return d
}

// httpCheck is the request plumbing shared by the HTTP based validators
type httpCheck struct {
	client  httpclient.Doer
	timeout time.Duration
	baseURL string
	logger  zerolog.Logger
}

func newHTTPCheck(deps Deps, family, defaultBaseURL string) httpCheck {
	baseURL := defaultBaseURL
	if override, ok := deps.Config.Endpoints[family]; ok && override != "" {
		baseURL = override
	}
	timeout := time.Duration(deps.Config.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultValidatorTimeoutSecs * time.Second
	}
	return httpCheck{
		client:  deps.Client,
		timeout: timeout,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  deps.Logger.With().Str("component", "Validator").Str("family", family).Logger(),
	}
}

type call struct {
	method  string
	path    string
	headers map[string]string
	body    string
}

// do issues one request under the validator deadline
func (c httpCheck) do(ctx context.Context, cl call) (*httpclient.HTTPResponse, error) {
	if c.client == nil {
		return nil, common.NewError("no HTTP client configured")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != "" {
		body = strings.NewReader(cl.body)
	}
	method := cl.method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := c.client.Do(&httpclient.HTTPRequest{
		URL:     c.baseURL + cl.path,
		Method:  method,
		Headers: cl.headers,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("url", httpclient.SafeURL(c.baseURL+cl.path)).Msg("Validation request failed")
		return nil, err
	}
	return resp, nil
}

// verdict maps a non-2xx status to its result. ok is false for 2xx.
func verdict(resp *httpclient.HTTPResponse) (Result, bool) {
	if resp.IsSuccess() {
		return Result{}, false
	}
	reason := fmt.Sprintf("HTTP %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Invalid(reason + ": authentication rejected"), true
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return FailedToCheck(common.NewHTTPErrorWithURL(resp.StatusCode, "issuer unavailable", "")), true
	default:
		return Invalid(reason), true
	}
}

// run issues cl, classifies the status and hands 2xx bodies to onOK
func (c httpCheck) run(ctx context.Context, cl call, onOK func(body []byte) Result) Result {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return FailedToCheck(err)
	}
	if res, done := verdict(resp); done {
		return res
	}
	if onOK == nil {
		return Valid(nil)
	}
	return onOK(resp.Body)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// jsonMetadata decodes body into v and returns the Valid result built by
// pick. A body that does not decode still counts as valid.
func jsonMetadata[T any](body []byte, pick func(T) map[string]string) Result {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return Valid(nil)
	}
	return Valid(pick(v))
}
