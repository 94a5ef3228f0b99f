package adminapi

// Status tags the outcome of an API call, mirroring this repo's HTTP
// response envelope.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "error"
)

// ErrorResponse is the JSON body returned for any non-2xx admin response.
type ErrorResponse struct {
	Status Status `json:"status"`
	Error  string `json:"error"`
}

func newErrorResponse(err string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: err}
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status Status `json:"status"`
}

func newHealthResponse() HealthResponse {
	return HealthResponse{Status: StatusOK}
}
