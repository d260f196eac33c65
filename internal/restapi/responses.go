package restapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// ResponseModel is the envelope of every API response.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Data        any    `json:"data,omitempty"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

const apiVersion = 1

func newResponse(code int, text string, data any) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: time.Now().UnixMilli(),
		Data:        data,
		Text:        text,
		Version:     apiVersion,
	}
}

func (api *RestAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		api.Logger.Error("failed to encode response", "error", err)
	}
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, data any) {
	api.writeJSON(w, http.StatusOK, newResponse(http.StatusOK, "OK", data))
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, text string) {
	if text == "" {
		text = "resource not found"
	}
	api.writeJSON(w, http.StatusNotFound, newResponse(http.StatusNotFound, text, nil))
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.Logger.Error("request failed", "error", err, "path", r.URL.Path)
	api.writeJSON(w, http.StatusInternalServerError,
		newResponse(http.StatusInternalServerError, "internal server error", nil))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}
	api.writeJSON(w, http.StatusBadRequest, response)
}
