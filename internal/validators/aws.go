package validators

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/sigv4"
)

const (
	awsSTSBaseURL = "https://sts.amazonaws.com"
	awsSTSQuery   = "/?Action=GetCallerIdentity&Version=2011-06-15"
	awsRegion     = "us-east-1"
	awsService    = "sts"
)

// AWSValidator calls STS GetCallerIdentity with a SigV4 signed request.
// A 403 is retried exactly once after RetryDelay.
type AWSValidator struct {
	check      httpCheck
	signer     *sigv4.Signer
	now        func() time.Time
	wait       func(ctx context.Context, d time.Duration) error
	RetryDelay time.Duration
}

// NewAWSValidator creates the validator for access key and session key families
func NewAWSValidator(deps Deps, family string) *AWSValidator {
	deps = deps.withDefaults()
	return &AWSValidator{
		check:      newHTTPCheck(deps, family, awsSTSBaseURL),
		signer:     sigv4.NewSigner(),
		now:        deps.Now,
		wait:       deps.Wait,
		RetryDelay: time.Duration(deps.Config.AWSRetryDelayMs) * time.Millisecond,
	}
}

type callerIdentityResponse struct {
	GetCallerIdentityResponse struct {
		GetCallerIdentityResult struct {
			Account string `json:"Account"`
			Arn     string `json:"Arn"`
			UserID  string `json:"UserId"`
		} `json:"GetCallerIdentityResult"`
	} `json:"GetCallerIdentityResponse"`
}

func (v *AWSValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.AWSPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	creds := sigv4.Credentials{
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
		SessionToken:    p.SessionToken,
	}

	status, body, err := v.callerIdentity(ctx, creds)
	if err == nil && status == http.StatusForbidden {
		v.check.logger.Debug().Str("access_key_id", models.Redact(p.AccessKeyID)).Dur("delay", v.RetryDelay).Msg("STS returned 403, retrying once")
		if werr := v.wait(ctx, v.RetryDelay); werr != nil {
			return FailedToCheck(werr)
		}
		status, body, err = v.callerIdentity(ctx, creds)
	}
	if err != nil {
		return FailedToCheck(err)
	}
	if status < 200 || status >= 300 {
		return Invalid(fmt.Sprintf("HTTP %d from GetCallerIdentity", status))
	}

	return jsonMetadata(body, func(r callerIdentityResponse) map[string]string {
		res := r.GetCallerIdentityResponse.GetCallerIdentityResult
		return map[string]string{"account": res.Account, "arn": res.Arn, "userId": res.UserID}
	})
}

func (v *AWSValidator) callerIdentity(ctx context.Context, creds sigv4.Credentials) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, v.check.baseURL+awsSTSQuery, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if err := v.signer.SignHTTP(req, creds, sigv4.EmptyPayloadHash, awsService, awsRegion, v.now()); err != nil {
		return 0, nil, err
	}

	headers := make(map[string]string, len(req.Header))
	for name := range req.Header {
		headers[name] = req.Header.Get(name)
	}
	resp, err := v.check.do(ctx, call{method: http.MethodGet, path: awsSTSQuery, headers: headers})
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, resp.Body, nil
}
