package httpresponse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const INTERNALERRORJSON = `{"error":"Internal server error","code":"internal"}`

const (
	CodeInvalidRequest  = "invalid_request"
	CodeSessionNotFound = "session_not_found"
	CodeOracleFailed    = "oracle_failed"
	CodeMoveNotFound    = "move_not_found"
	CodeInternal        = "internal"
)

func WriteJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Errorf("writeJSON marshal error: %v", err)
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Errorf("writeJSON write error: %v", err)
	}
}

func WriteJSONError(log *zap.SugaredLogger, w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(log, w, status, ErrorResponse{Error: msg, Code: code})
	log.Debugf("writeJSONError: %d %s: %s", status, code, msg)
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// same as http.Error, only the Content-Type differs
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}
