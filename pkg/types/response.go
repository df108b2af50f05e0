package types

// SuccessEnvelope wraps every 2xx JSON body, e.g. {"data": {"quote_number": "Q-1767323040"}}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public part of a typed error. Details carries field
// messages keyed by JSON path, such as "items[0].quantity".
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
