package types

// SuccessEnvelope wraps every 2xx payload the API serves.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape: a stable machine code plus a
// message safe to surface to club admins. Details carries structured
// context (missing slots, failed readiness checks) when the code
// permits it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
