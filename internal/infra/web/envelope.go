package web

import (
	"encoding/json"
	"net/http"
)

// Envelope is the acknowledgement body the payment provider expects on
// every callback delivery, success or not. A malformed 500 with no body
// makes the provider retry forever; a well-formed error envelope stops
// the storm.
type Envelope struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

var (
	envSuccess          = Envelope{"00000000", "SUCCESS"}
	envBadRequest       = Envelope{"40000000", "BAD_REQUEST"}
	envAmountMismatch   = Envelope{"40000001", "AMOUNT_MISMATCH"}
	envInvalidSignature = Envelope{"40100401", "INVALID_SIGNATURE"}
	envRefNotFound      = Envelope{"40400001", "REFERENCE_NOT_FOUND"}
	envInternalError    = Envelope{"50000000", "INTERNAL_ERROR"}
)

func writeEnvelope(w http.ResponseWriter, httpStatus int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(env)
}

func writeJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(v)
}
