package transport

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	apierrors "github.com/lokis-perfume/storefront/client/internal/errors"
)

// Rule extracts one candidate value from a parsed JSON body. Rules are tried
// in order; the first truthy result wins.
type Rule struct {
	Name string
	Path string // gjson path
}

// MessageRules and CodeRules cover both envelope shapes:
// {"error":{"code","message"}} and the bare {"code","message"}.
var (
	MessageRules = []Rule{
		{Name: "error.message", Path: "error.message"},
		{Name: "message", Path: "message"},
	}
	CodeRules = []Rule{
		{Name: "error.code", Path: "error.code"},
		{Name: "code", Path: "code"},
	}
)

// ApplyRules returns the first truthy value selected by rules, as a string.
func ApplyRules(body []byte, rules []Rule) (string, bool) {
	for _, r := range rules {
		res := gjson.GetBytes(body, r.Path)
		if truthy(res) {
			return res.String(), true
		}
	}
	return "", false
}

// HasErrorIndicator reports whether a successfully parsed body declares a
// failure: a truthy "error" field, or a non-empty top-level "code" string on
// a body with no "data" member.
func HasErrorIndicator(body []byte) bool {
	res := gjson.GetManyBytes(body, "error", "code", "data")
	if truthy(res[0]) {
		return true
	}
	code, data := res[1], res[2]
	return code.Type == gjson.String && code.Str != "" && !data.Exists()
}

// ExtractError builds the normalized error for a parsed body using
// MessageRules and CodeRules. It is pure; the caller decides whether the
// body represents a failure.
func ExtractError(body []byte, status int) *apierrors.APIError {
	msg, ok := ApplyRules(body, MessageRules)
	if !ok {
		msg = apierrors.FallbackMessage(status)
	}
	code, ok := ApplyRules(body, CodeRules)
	if !ok {
		code = apierrors.CodeHTTP
	}
	return &apierrors.APIError{Code: code, Message: msg, Status: status}
}

// UnwrapData returns the raw "data" member, or nil when it is absent or null.
func UnwrapData(body []byte) json.RawMessage {
	res := gjson.GetBytes(body, "data")
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(res.Raw)
}

// Interpret turns a response into data or a normalized error.
//
//   - 204 is success with no data, whatever the body says.
//   - An unparsable body is success with no data on 2xx, HTTP_ERROR otherwise.
//   - A parsed body fails when the status is not 2xx or it carries an error
//     indicator; otherwise its "data" member is returned.
func Interpret(status int, statusText string, body []byte) (json.RawMessage, *apierrors.APIError) {
	if status == 204 {
		return nil, nil
	}
	ok := status >= 200 && status < 300
	if !gjson.ValidBytes(body) {
		if ok {
			return nil, nil
		}
		return nil, apierrors.NewHTTPError(status, statusText)
	}
	if !ok || HasErrorIndicator(body) {
		return nil, ExtractError(body, status)
	}
	return UnwrapData(body), nil
}

// truthy mirrors JavaScript truthiness for a JSON value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}
