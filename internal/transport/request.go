package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
)

// maxErrorBody bounds the response text kept in an APIError.
const maxErrorBody = 2048

// DecodeResponse closes resp and decodes a 2xx JSON body into target. A nil
// target discards the body. Other statuses become *errors.APIError carrying
// the (truncated) body.
func DecodeResponse(resp *http.Response, service string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = resp.Status
		}
		endpoint := ""
		if resp.Request != nil {
			endpoint = resp.Request.Method + " " + resp.Request.URL.Path
		}
		return &errors.APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    msg,
		}
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

var linkNext = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// NextLink returns the URL of the rel="next" entry of a Link header, or "".
func NextLink(h http.Header) string {
	for _, v := range h.Values("Link") {
		if m := linkNext.FindStringSubmatch(v); m != nil {
			return m[1]
		}
	}
	return ""
}
