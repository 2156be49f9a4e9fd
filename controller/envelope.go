package controller

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// rcOK is the controller's success return code.
const rcOK = "ok"

// meta is the status half of the controller envelope.
type meta struct {
	RC  string `json:"rc"`
	Msg string `json:"msg,omitempty"`
}

// envelope is the uniform JSON wrapper the controller puts around every
// response: {"meta":{"rc":"ok"|"error","msg":...},"data":[...]}.
type envelope struct {
	Meta meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// decodeEnvelope parses a controller response body. A body without the meta
// wrapper is not a controller envelope and yields an error.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "response is not a controller envelope")
	}
	if env.Meta.RC == "" {
		return nil, errors.New("response is missing meta.rc")
	}
	return &env, nil
}

// Result is the success outcome of a query: the controller's data payload,
// passed through unchanged.
type Result struct {
	// StatusCode is the HTTP status of the query response.
	StatusCode int

	// Data is the raw JSON from the envelope's data field, verbatim.
	Data json.RawMessage
}

// Decode unmarshals the data payload into v, typically a pointer to a slice
// of maps or a caller-defined struct slice.
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("result carries no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Wrap(err, "failed to decode result data")
	}
	return nil
}
