// Package result contains results that are used to write out API responses.
//
// Every constructor takes an optional internal message in Printf style. It is
// logged by the server and never sent to the client.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// splitInternal separates an optional format string and its arguments, using
// def when none is given.
func splitInternal(def string, internalMsg []interface{}) (string, []interface{}) {
	if len(internalMsg) < 1 {
		return def, nil
	}
	return internalMsg[0].(string), internalMsg[1:]
}

// OK returns a Result containing an HTTP-200.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("OK", internalMsg)
	return Response(http.StatusOK, respObj, msgFmt, msgArgs...)
}

// Created returns a Result containing an HTTP-201 with a Location header
// pointing at uri.
func Created(uri string, respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("created", internalMsg)
	return Response(http.StatusCreated, respObj, msgFmt, msgArgs...).WithHeader("Location", uri)
}

// NoContent returns a Result containing an HTTP-204.
func NoContent(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("no content", internalMsg)
	return Response(http.StatusNoContent, nil, msgFmt, msgArgs...)
}

// BadRequest returns a Result containing an HTTP-400 that shows userMsg to the
// client.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("bad request", internalMsg)
	return Err(http.StatusBadRequest, userMsg, msgFmt, msgArgs...)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("not found", internalMsg)
	return Err(http.StatusNotFound, "The requested resource was not found", msgFmt, msgArgs...)
}

// MethodNotAllowed returns a Result containing an HTTP-405 naming the method
// and path of req.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("method not allowed", internalMsg)
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, msgFmt, msgArgs...)
}

// UnprocessableEntity returns a Result containing an HTTP-422 that shows
// userMsg to the client. It is for well-formed requests that could not be
// carried out.
func UnprocessableEntity(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("unprocessable entity", internalMsg)
	return Err(http.StatusUnprocessableEntity, userMsg, msgFmt, msgArgs...)
}

// InternalServerError returns a Result containing an HTTP-500. The client only
// sees a generic message.
func InternalServerError(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternal("internal server error", internalMsg)
	return Err(http.StatusInternalServerError, "An internal server error occurred", msgFmt, msgArgs...)
}

// Response returns a successful JSON Result. If status is
// http.StatusNoContent, respObj is not read and may be nil; otherwise it must
// not be nil.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Err returns a JSON error Result whose body is an ErrorResponse.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// Redirection returns a Result that permanently redirects to uri.
func Redirection(uri string) Result {
	return Result{
		Status:      http.StatusPermanentRedirect,
		InternalMsg: fmt.Sprintf("redirect -> %s", uri),
		redir:       uri,
	}
}

// TextErr is like Err but writes userMsg as plain text with no JSON encoding.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp  interface{}
	redir string // only used for redirects
	hdrs  [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

// WithHeader returns a copy of r that also sets the given header.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = make([][2]string, len(r.hdrs), len(r.hdrs)+1)
	copy(cp.hdrs, r.hdrs)
	cp.hdrs = append(cp.hdrs, [2]string{name, val})
	return cp
}

// PrepareMarshaledResponse marshals the JSON body of r if it has one. Once it
// has succeeded, later calls do nothing.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}

	if r.IsJSON && r.Status != http.StatusNoContent && r.redir == "" {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteResponse writes r to w. It panics if r was never populated or its body
// cannot be marshaled.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	err := r.PrepareMarshaledResponse()
	if err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var respBytes []byte

	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		if r.redir == "" {
			respBytes = r.respJSONBytes
		}
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if r.Status != http.StatusNoContent && r.redir == "" {
			respBytes = []byte(fmt.Sprintf("%v", r.resp))
		}
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if r.redir != "" {
		w.Header().Set("Location", r.redir)
	}

	for i := range r.hdrs {
		w.Header().Set(r.hdrs[i][0], r.hdrs[i][1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}
