package types

// GatewayErrorEnvelope is the failure shape on the internal wire.
type GatewayErrorEnvelope struct {
	Error GatewayError `json:"error"`
}

type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EdgeEnvelope is the external success shape.
type EdgeEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// EdgeError is the external failure shape; the HTTP status carries the
// classification.
type EdgeError struct {
	Detail string `json:"detail"`
}
