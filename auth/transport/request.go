package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/simon/auth"
	"io"
	"net/http"
)

// Request is an immutable snapshot of an outgoing call. Retried is set on the
// copy produced for the single replay after refresh.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Retried bool
}

// NewRequest creates a request descriptor.
func NewRequest(method, URL string, body []byte) *Request {
	return &Request{Method: method, URL: URL, Header: http.Header{}, Body: body}
}

// NewJSONRequest creates a request descriptor with a JSON encoded payload; nil payload sends no body.
func NewJSONRequest(method, URL string, payload interface{}) (*Request, error) {
	request := NewRequest(method, URL, nil)
	request.Header.Set("Accept", "application/json")
	if payload == nil {
		return request, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	request.Body = data
	request.Header.Set("Content-Type", "application/json")
	return request, nil
}

// FromHTTP snapshots req, buffering and closing its body so it can be replayed.
func FromHTTP(req *http.Request) (*Request, error) {
	ret := &Request{Method: req.Method, URL: req.URL.String(), Header: req.Header.Clone()}
	if ret.Header == nil {
		ret.Header = http.Header{}
	}
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		ret.Body = data
	}
	return ret, nil
}

// replay returns the copy sent after a successful refresh.
func (r *Request) replay() *Request {
	ret := &Request{Method: r.Method, URL: r.URL, Header: r.Header.Clone(), Retried: true}
	if ret.Header == nil {
		ret.Header = http.Header{}
	}
	if r.Body != nil {
		ret.Body = append([]byte(nil), r.Body...)
	}
	ret.Header.Set(auth.RetryHeader, "1")
	return ret
}

func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	ret, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		ret.Header[k] = append([]string(nil), v...)
	}
	return ret, nil
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
}

// Decode unmarshals the JSON body into target.
func (r *Response) Decode(target interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, target)
}

func (r *Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

func (r *Response) httpError() *auth.HTTPError {
	return &auth.HTTPError{
		Method:     r.Request.Method,
		URL:        r.Request.URL,
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       r.Body,
	}
}

func (r *Response) result() (*Response, error) {
	if r.ok() {
		return r, nil
	}
	return nil, r.httpError()
}

func toHTTPResponse(req *http.Request, statusCode int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
