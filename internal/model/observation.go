package model

import "time"

// Observation is a single dated value of a raw provider series.
type Observation struct {
	Date  time.Time
	Value float64
}

// FREDResponse represents the series/observations payload of the FRED API
type FREDResponse struct {
	ObservationStart string `json:"observation_start"`
	ObservationEnd   string `json:"observation_end"`
	Count            int    `json:"count"`
	Observations     []struct {
		Date  string `json:"date"`
		Value string `json:"value"` // "." marks a missing observation
	} `json:"observations"`
}

// FREDError is the error body returned by the FRED API
type FREDError struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// YahooChartResponse represents the v8 chart payload of Yahoo Finance
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
