package dispatch

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/routegrid/routegrid/internal/router"
	"github.com/routegrid/routegrid/internal/util"
)

// Body rejection reasons used as metric labels.
const (
	reasonQuota       = "quota"
	reasonContentType = "content_type"
	reasonMalformed   = "malformed"
	reasonStream      = "stream"
	reasonQueryLength = "query_length"
)

// bodyMethods lists the methods that conventionally carry a request
// body. Other methods skip body processing entirely, even when a body
// is present on the wire.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// rejection describes why the body stage refused a request, before or
// during acquisition.
type rejection struct {
	status  int
	reason  string
	message string
	err     error
}

// processBody runs body admission and acquisition for the route. A nil
// return means the request may proceed; the parsed body, if any, has
// been attached to the context.
//
// Admission checks run against headers only, before a single body byte
// is read: the declared length is checked against the quota, and the
// declared content type against the route's accepted type. Acquisition
// then reads the stream with the quota still enforced, covering
// chunked requests that declare no length.
func processBody(c *router.Context, route *router.Route) *rejection {
	r := c.Request()
	if !bodyMethods[r.Method] {
		return nil
	}
	if !announcesBody(r) {
		return nil
	}

	if route.BodyQuota > 0 && r.ContentLength > route.BodyQuota {
		return &rejection{
			status:  http.StatusRequestEntityTooLarge,
			reason:  reasonQuota,
			message: "request body exceeds quota",
			err:     util.ErrPayloadTooLarge,
		}
	}

	if route.Accepts != "" && !contentTypeMatches(r.Header.Get("Content-Type"), route.Accepts) {
		return &rejection{
			status:  http.StatusBadRequest,
			reason:  reasonContentType,
			message: "unsupported content type, expected " + route.Accepts,
			err:     util.NewBodyError("content type mismatch"),
		}
	}

	if !route.ProcessBody {
		// The stream stays with the handler, but the quota still holds.
		if route.BodyQuota > 0 {
			r.Body = &limitedReadCloser{ReadCloser: r.Body, remaining: route.BodyQuota}
		}
		return nil
	}

	reader := io.Reader(r.Body)
	if route.BodyQuota > 0 {
		// One extra byte distinguishes at-quota from over-quota.
		reader = io.LimitReader(r.Body, route.BodyQuota+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return &rejection{
			status:  http.StatusBadRequest,
			reason:  reasonStream,
			message: "request body could not be read",
			err:     util.NewBodyErrorWithCause("stream read failed", err),
		}
	}
	if route.BodyQuota > 0 && int64(len(data)) > route.BodyQuota {
		return &rejection{
			status:  http.StatusRequestEntityTooLarge,
			reason:  reasonQuota,
			message: "request body exceeds quota",
			err:     util.ErrPayloadTooLarge,
		}
	}

	switch {
	case isJSONType(route.Accepts):
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return &rejection{
				status:  http.StatusBadRequest,
				reason:  reasonMalformed,
				message: "malformed JSON body",
				err:     util.NewBodyErrorWithCause("malformed JSON", err),
			}
		}
		c.SetBody(v)
	case isFormType(route.Accepts):
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return &rejection{
				status:  http.StatusBadRequest,
				reason:  reasonMalformed,
				message: "malformed form body",
				err:     util.NewBodyErrorWithCause("malformed form", err),
			}
		}
		c.SetBody(values)
	default:
		c.SetBody(data)
	}
	return nil
}

// announcesBody reports whether the request declares a body on the
// wire: a positive Content-Length or a chunked transfer encoding.
func announcesBody(r *http.Request) bool {
	if r.ContentLength > 0 {
		return true
	}
	// net/http reports -1 for chunked requests.
	return r.ContentLength == -1 && len(r.TransferEncoding) > 0
}

// contentTypeMatches compares the declared media type against the
// accepted one, ignoring parameters such as charset.
func contentTypeMatches(contentType, accepts string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	return strings.EqualFold(strings.TrimSpace(mediaType), accepts)
}

func isJSONType(accepts string) bool {
	return strings.EqualFold(accepts, "application/json") ||
		strings.HasSuffix(strings.ToLower(accepts), "+json")
}

func isFormType(accepts string) bool {
	return strings.EqualFold(accepts, "application/x-www-form-urlencoded")
}

// limitedReadCloser enforces the body quota on a stream handed to the
// handler unparsed.
type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.remaining <= 0 {
		// The quota is spent, but a body of exactly quota bytes is
		// still admissible: reject only if there is a byte beyond it.
		var b [1]byte
		n, err = l.ReadCloser.Read(b[:])
		if n > 0 {
			return 0, util.ErrPayloadTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err = l.ReadCloser.Read(p)
	l.remaining -= int64(n)
	return n, err
}
