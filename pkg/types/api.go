package types

// InferRequest is the body of POST /infer.
type InferRequest struct {
	// Required question to answer.
	// example: Write a short post about managed inference endpoints.
	Query string `json:"query"`
	// Optional supporting material the answer should draw on.
	Context string `json:"context,omitempty"`
}

// InferResponse carries the generated answer.
type InferResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error"`
	// HTTP status code.
	// example: 400
	Code int `json:"code"`
}

// ResourceResult describes what teardown did to one remote resource.
type ResourceResult struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// TeardownResponse is printed by the delete-endpoint command.
type TeardownResponse struct {
	Endpoint  string           `json:"endpoint"`
	Resources []ResourceResult `json:"resources"`
	Clean     bool             `json:"clean"`
}
