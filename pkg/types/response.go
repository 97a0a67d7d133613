package types

// SuccessEnvelope wraps every successful API payload under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire shape for a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
