package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

const MaxInlineSize = 10 << 20 // 10mb decoded

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// EnqueueRequest is the POST /enqueue body. Exactly one of Pathname or
// ContentB64 must carry the document.
type EnqueueRequest struct {
	Pathname     string            `json:"pathname" validate:"required_without=ContentB64,omitempty,max=512"`
	ContentB64   string            `json:"content_b64" validate:"required_without=Pathname"`
	Filename     string            `json:"filename" validate:"omitempty,max=255"`
	Size         int64             `json:"size" validate:"gte=0"`
	Debug        bool              `json:"debug"`
	Jurisdiction *job.Jurisdiction `json:"jurisdiction"`
}

var validate = validator.New()

// ValidateEnqueue checks structure and, for inline payloads, decodes the
// base64 content and sniffs that it actually is a PDF. The job record stores
// the base64 form, so the decoded bytes are discarded here; the worker decodes
// again when it picks the job up.
func ValidateEnqueue(req *EnqueueRequest) ValidationErrors {
	var errs ValidationErrors

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: fmt.Sprintf("failed %s validation", fe.Tag()),
				})
			}
		} else {
			errs = append(errs, ValidationError{Field: "request", Message: err.Error()})
		}
		return errs
	}

	if req.Pathname != "" && req.ContentB64 != "" {
		errs = append(errs, ValidationError{
			Field:   "request",
			Message: "provide either pathname or content_b64, not both",
		})
		return errs
	}

	if req.ContentB64 == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		errs = append(errs, ValidationError{Field: "content_b64", Message: "invalid base64"})
		return errs
	}
	if len(raw) == 0 {
		errs = append(errs, ValidationError{Field: "content_b64", Message: "empty content"})
		return errs
	}
	if len(raw) > MaxInlineSize {
		errs = append(errs, ValidationError{
			Field:   "content_b64",
			Message: fmt.Sprintf("decoded content exceeds maximum size of %d bytes", MaxInlineSize),
		})
		return errs
	}
	if mt := mimetype.Detect(raw); !mt.Is("application/pdf") {
		errs = append(errs, ValidationError{
			Field:   "content_b64",
			Message: fmt.Sprintf("unsupported content type: %s", mt.String()),
		})
		return errs
	}

	return nil
}
