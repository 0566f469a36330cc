package api

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Envelope is the normalized success body.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Count   int             `json:"count,omitempty"`
	Total   int64           `json:"total,omitempty"`
	Page    int             `json:"page,omitempty"`
	Limit   int             `json:"limit,omitempty"`
}

// normalize turns a raw 2xx body into an Envelope. Bodies without a top-level
// "success" field are wrapped as {success: true, data: body}.
func normalize(body []byte) (*Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Envelope{Success: true}, nil
	}
	if !json.Valid(body) {
		quoted, err := json.Marshal(string(body))
		if err != nil {
			return nil, errors.Wrap(err, "quote non-json body")
		}
		return &Envelope{Success: true, Data: quoted}, nil
	}

	var probe map[string]json.RawMessage
	if body[0] == '{' && json.Unmarshal(body, &probe) == nil {
		if _, ok := probe["success"]; ok {
			var env Envelope
			if err := json.Unmarshal(body, &env); err != nil {
				return nil, errors.Wrap(err, "decode envelope")
			}
			return &env, nil
		}
	}
	data := make(json.RawMessage, len(body))
	copy(data, body)
	return &Envelope{Success: true, Data: data}, nil
}

// Decode unmarshals env.Data into a T.
func Decode[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &Error{Message: "unexpected response shape", Code: CodeBadResponse, Err: err}
	}
	return out, nil
}
