package pdk

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
)

// Call is the request envelope used by the CLI and HTTP transports: the
// host facts, the user's tool config and the entry-point input.
type Call struct {
	Function string            `json:"function,omitempty"`
	Host     *host.Environment `json:"host,omitempty"`
	Config   json.RawMessage   `json:"config,omitempty"`
	Input    json.RawMessage   `json:"input,omitempty"`
}

// DecodeCall reads an envelope. An empty body is an empty envelope.
func DecodeCall(r io.Reader) (Call, error) {
	var call Call
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&call); err != nil && err != io.EOF {
		return Call{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request envelope")
	}
	return call, nil
}

// ErrorBody is the JSON shape of a failed call.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// NewErrorBody converts err for the wire. Errors without a code are
// reported as INTERNAL_ERROR.
func NewErrorBody(err error) ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return ErrorBody{Code: code, Message: errors.UserMessage(err)}
}
