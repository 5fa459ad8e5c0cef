package rpctypes

// RequestContext is the request-scoped record threaded through the
// dispatcher into every handler and downstream client call. It is created
// at ingress and carries the fields needed for log correlation and for
// stamping user-visible error messages with the originating request id.
type RequestContext struct {
	RequestID string
	IP        string
	ConnID    string
	User      string
}
