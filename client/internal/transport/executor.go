// Package transport implements the request pipeline shared by every
// storefront endpoint: URL building, header and body policy, the HTTP call,
// and normalization of the response into unwrapped data or an *APIError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

// HTTPClient is the subset of *http.Client used by the executor.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes a single call. It is built per call and not retained.
type Request struct {
	Service string // logical backend name, used by hooks only
	Method  string // defaults to GET
	Path    string
	Query   map[string]any
	Body    any    // string, []byte and json.RawMessage are sent as-is
	Token   string // bearer credential, optional
	Header  http.Header
}

// Executor performs requests. It holds no per-call state and is safe for
// concurrent use as long as its HTTPClient is.
type Executor struct {
	http  HTTPClient
	hook  Hook
	newID func() string
}

// NewExecutor returns an Executor using hc for transport. hook may be nil.
func NewExecutor(hc HTTPClient, hook Hook) *Executor {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Executor{http: hc, hook: hook, newID: uuid.NewString}
}

// Do performs req against baseURL and returns the unwrapped "data" member of
// the response (nil when absent). Every failure is returned as an
// *apierrors.APIError. Do never retries.
func (e *Executor) Do(ctx context.Context, baseURL string, req Request) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := BuildURL(baseURL, req.Path, req.Query)
	info := RequestInfo{
		ID:      e.newID(),
		Service: req.Service,
		Method:  method,
		URL:     target,
		Authed:  req.Token != "",
	}

	if e.hook != nil {
		e.hook.RequestStarted(ctx, info)
	}
	start := time.Now()
	data, status, apiErr := e.do(ctx, method, target, req)
	if e.hook != nil {
		e.hook.RequestFinished(ctx, info, Outcome{Status: status, Duration: time.Since(start), Err: apiErr})
	}

	if apiErr != nil {
		return nil, apiErr
	}
	return data, nil
}

func (e *Executor) do(ctx context.Context, method, target string, req Request) (json.RawMessage, int, *apierrors.APIError) {
	payload, hasBody, err := encodeBody(req.Body)
	if err != nil {
		return nil, 0, apierrors.NewEncodeError(err)
	}

	var body io.Reader
	if hasBody {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, apierrors.NewNetworkError(err)
	}
	applyHeaders(httpReq, req.Header, hasBody, req.Token)

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return nil, 0, apierrors.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.StatusCode, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apierrors.NewNetworkError(err)
	}

	data, apiErr := Interpret(resp.StatusCode, reasonPhrase(resp), raw)
	return data, resp.StatusCode, apiErr
}

// applyHeaders copies caller headers, then adds the JSON content type when a
// body is present and none was supplied, and the bearer credential when a
// token is present.
func applyHeaders(r *http.Request, header http.Header, hasBody bool, token string) {
	for k, vs := range header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if hasBody && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// encodeBody serializes body. Strings and byte slices are passed through;
// everything else is JSON-encoded. nil and nil pointers, maps and slices
// mean "no body".
func encodeBody(body any) ([]byte, bool, error) {
	switch v := body.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(v), true, nil
	case json.RawMessage:
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	case []byte:
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}

	rv := reflect.ValueOf(body)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil, false, nil
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// reasonPhrase extracts the status text from resp.Status ("404 Not Found").
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	return strings.TrimSpace(text)
}
