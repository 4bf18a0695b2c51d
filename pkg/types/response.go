package types

const StatusSuccess = "success"

// StatusEnvelope is the body of every mutating endpoint. Data is left out
// when an operation has nothing to report back.
type StatusEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
