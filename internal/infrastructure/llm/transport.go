package llm

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingTransport is an http.RoundTripper that logs request and response bodies
// when the logger has debug enabled.
type LoggingTransport struct {
	Base http.RoundTripper
	Log  *zap.SugaredLogger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Log == nil || !t.Log.Desugar().Core().Enabled(zapcore.DebugLevel) {
		return base.RoundTrip(req)
	}

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}
	t.Log.Debugw("Outbound request", "method", req.Method, "url", req.URL.String(), "body", string(reqBody))

	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	respBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
	t.Log.Debugw("Outbound response", "status", resp.StatusCode, "url", req.URL.String(), "body", string(respBody))

	return resp, nil
}
