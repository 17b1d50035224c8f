package http

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"symbol"`
	Message string                 `json:"message,omitempty" example:"symbol is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// HealthResponse describes the running pipeline.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Recorder string `json:"recorder"`
	Steps    int    `json:"steps"`
	Period   string `json:"period"`
}
