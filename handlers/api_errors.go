package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// APIErrorDetail represents a single error in the standardized error response.
// Meta optionally carries machine-readable context such as the per-file
// failure list of a rejected submission.
type APIErrorDetail struct {
	Code   string                 `json:"code"`
	Status string                 `json:"status"`
	Detail string                 `json:"detail"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	WriteAPIErrorMeta(w, httpStatus, code, detail, nil)
}

// WriteAPIErrorMeta is WriteAPIError with an attached meta object.
func WriteAPIErrorMeta(w http.ResponseWriter, httpStatus int, code string, detail string, meta map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
				Meta:   meta,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}
