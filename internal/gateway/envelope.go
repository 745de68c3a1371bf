package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CodeResourceExists is returned by the platform when the resource the
// call would create already exists. Callers treat it as success with an
// existing identity rather than a failure.
const CodeResourceExists = 3413

// Envelope is the platform's standard response wrapper. ResponseData
// varies by call: an object for customer creation, a numeric id for
// invoice creation, a string id for payment links.
type Envelope struct {
	IsSuccess    bool            `json:"isSuccess"`
	ResponseText string          `json:"responseText"`
	ResponseCode int             `json:"responseCode"`
	ResponseData json.RawMessage `json:"responseData"`
}

// Err returns nil for a successful envelope, otherwise a *RemoteError
// carrying the platform's code and explanation.
func (e *Envelope) Err() error {
	if e.IsSuccess {
		return nil
	}
	return &RemoteError{Code: e.ResponseCode, Message: e.ResponseText}
}

// DecodeData unmarshals the result payload into out.
func (e *Envelope) DecodeData(out any) error {
	if len(e.ResponseData) == 0 {
		return errors.New("empty response data")
	}
	return json.Unmarshal(e.ResponseData, out)
}

// RemoteError is a rejection reported by the platform itself, as opposed
// to a transport failure where the remote outcome is unknown.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote rejected request (code %d)", e.Code)
	}
	return fmt.Sprintf("remote rejected request: %s (code %d)", e.Message, e.Code)
}

// IsResourceExists reports whether err is the platform's
// "already exists" rejection.
func IsResourceExists(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Code == CodeResourceExists
}

// IsRemoteRejection reports whether err carries a definitive remote
// outcome. A false result on a non-nil error means the outcome is
// unknown and callers must not assume the operation happened.
func IsRemoteRejection(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// DecodeEnvelope parses a reply into the standard wrapper. Rejections
// arrive on non-2xx statuses with a parseable envelope, so the status
// alone does not fail the decode; an unparseable non-2xx body does.
func DecodeEnvelope(reply Reply) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(reply.Body, &env); err != nil {
		if reply.Status < 200 || reply.Status > 299 {
			return nil, fmt.Errorf("remote status %d", reply.Status)
		}
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	return &env, nil
}
