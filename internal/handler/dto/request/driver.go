package request

import (
	"strings"

	"tandaro-api/internal/usecase/commands"
)

// CompleteJobRequest carries the proof-of-delivery artifacts a driver
// attaches when finishing a job. All fields are optional.
type CompleteJobRequest struct {
	Images       []string `json:"images,omitempty"`
	SignatureURL *string  `json:"signature_url,omitempty"`
	Note         *string  `json:"note,omitempty"`
}

func (r *CompleteJobRequest) ToCommand() commands.CompletionReport {
	note := ""
	if r.Note != nil {
		note = strings.TrimSpace(*r.Note)
	}
	return commands.CompletionReport{
		Images:       r.Images,
		SignatureURL: r.SignatureURL,
		Note:         note,
	}
}
