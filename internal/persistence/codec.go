package persistence

import (
	"encoding/json"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// Answer documents travel to and from clients as JSON, so JSON is also
// their storage encoding: an arbitrary tree of maps, slices, and
// scalars round-trips without type registration.

// EncodeAnswers serializes an answer map. A nil map encodes as an empty
// document so stores never hold NULL answers.
func EncodeAnswers(a api.Answers) ([]byte, error) {
	if a == nil {
		a = api.Answers{}
	}
	return json.Marshal(a)
}

// DecodeAnswers deserializes an answer map. Empty input decodes to an
// empty, non-nil map.
func DecodeAnswers(data []byte) (api.Answers, error) {
	if len(data) == 0 {
		return api.Answers{}, nil
	}
	var a api.Answers
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a == nil {
		a = api.Answers{}
	}
	return a, nil
}
