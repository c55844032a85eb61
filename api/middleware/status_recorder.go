package middleware

import "net/http"

// statusRecorder wraps an http.ResponseWriter to capture the status code
// written by downstream handlers. status stays 0 until WriteHeader is called.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
