package omnicore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the Core's structured reply. Data is nil when the service sent null.
type Result struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *Result) UnmarshalJSON(b []byte) error {
	type plain Result
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(p.Data), []byte("null")) {
		p.Data = nil
	}
	*r = Result(p)
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	p := plain(r)
	if len(p.Data) == 0 {
		p.Data = json.RawMessage("null")
	}
	return json.Marshal(p)
}

func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Failure builds the result shown when no usable reply arrived.
func Failure(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

// Core versions disagree on where the NLU confidence lives.
var confidencePaths = []string{
	"confidence",
	"nlu_result.confidence",
	"nlu.confidence",
}

// Confidence returns the first numeric confidence found in Data, or zero.
func (r Result) Confidence() float64 {
	if len(r.Data) == 0 {
		return 0
	}
	for _, path := range confidencePaths {
		v := gjson.GetBytes(r.Data, path)
		if v.Type == gjson.Number {
			return v.Float()
		}
	}
	return 0
}

// FormatConfidence renders a 0..1 score as a percentage with one decimal.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}
