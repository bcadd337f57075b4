package session

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/google/uuid"
)

// maxReplays caps how many times one call is re-dispatched after renewal.
const maxReplays = 1

// Transport is an http.RoundTripper that decorates requests with the
// session's access credential and survives one renewal cycle per call.
type Transport struct {
	base    http.RoundTripper
	creds   *Credentials
	coord   *Coordinator
	logger  logging.Logger
	metrics *Metrics
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	return t.dispatch(req, 0)
}

// dispatch sends req with the credential current at this moment. attempt
// counts prior dispatches of the same call.
func (t *Transport) dispatch(req *http.Request, attempt int) (*http.Response, error) {
	ctx := req.Context()
	access := t.creds.Current().AccessToken

	out := Decorate(req, access)
	if attempt > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || attempt >= maxReplays {
		return resp, nil
	}

	if !replayable(req) {
		t.logger.Debug(ctx, "401 on a request without a rewindable body, not renewing",
			"request_id", req.Header.Get(common.RequestIDHeaderName))
		return resp, nil
	}

	if err := t.coord.Renew(ctx, access); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			closeBody(resp)
			return nil, err
		}
		return resp, nil
	}

	closeBody(resp)
	t.metrics.replay()
	t.logger.Debug(ctx, "replaying request after renewal",
		"method", req.Method, "path", req.URL.Path,
		"request_id", req.Header.Get(common.RequestIDHeaderName))

	return t.dispatch(req, attempt+1)
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
