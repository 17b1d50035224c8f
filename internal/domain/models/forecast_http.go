package models

// Requests for forecast HTTP endpoints.

type ForecastRequest struct {
	Symbol string `query:"symbol" json:"symbol" form:"symbol" validate:"required,min=1,max=15,ticker"`
}

// PageRequest is the form posted by the index page.
type PageRequest struct {
	Ticker string `form:"ticker" validate:"required,min=1,max=15,ticker"`
}

// LambdaEvent is the payload accepted by the serverless entrypoint.
type LambdaEvent struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=15,ticker"`
}

// HistoryRequest selects recorded forecasts for one symbol, newest first.
type HistoryRequest struct {
	Symbol string `query:"symbol" validate:"required,min=1,max=15,ticker"`
	Limit  int    `query:"limit" default:"10" validate:"min=1,max=100"`
}
