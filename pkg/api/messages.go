package api

type (
	// ErrorResponse is the common error payload for API failures
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}

	// EndpointsListResponse contains the configured endpoint definitions
	EndpointsListResponse struct {
		Endpoints []*EndpointDef `json:"endpoints"`
		Count     int            `json:"count"`
	}

	// ExecutionsListResponse contains recent execution records
	ExecutionsListResponse struct {
		Executions []*ExecutionRecord `json:"executions"`
		Count      int                `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service   string `json:"service"`
		Version   string `json:"version"`
		Status    string `json:"status"`
		Endpoints int    `json:"endpoints"`
	}
)
