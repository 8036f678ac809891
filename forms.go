package wonderfloyd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ContactForm is the contact page submission. Website is the honeypot:
// humans never see the field, so any value means an automated submission.
type ContactForm struct {
	Name    string
	Email   string
	Message string
	Website string
}

// Validate checks the visitor-supplied fields. The honeypot is deliberately
// not validated here; the handler short-circuits on it before validation.
func (f ContactForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&f.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("must be a valid email address"),
		),
		validation.Field(&f.Message,
			validation.Required.Error("message is required"),
			validation.Length(1, 5000),
		),
	)
}

// PostForm is the raw authoring submission as it arrives from the editor,
// before it is shaped into a PostSubmission for the content service.
type PostForm struct {
	Title        string
	Subtitle     string
	Body         string
	ImageURL     string
	CategoryIDs  []int64
	SourceLabels []string
	SourceURLs   []string
}

// Validate rejects malformed authoring input before the content service
// ever runs. Source URLs are validated only on rows that carry one.
func (f PostForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 250),
		),
		validation.Field(&f.Subtitle,
			validation.Required.Error("subtitle is required"),
			validation.Length(1, 250),
		),
		validation.Field(&f.Body,
			validation.Required.Error("content is required"),
		),
		validation.Field(&f.ImageURL,
			validation.When(f.ImageURL != "", is.URL.Error("must be a valid URL")),
		),
		validation.Field(&f.SourceURLs, validation.Each(validation.By(optionalURL))),
	)
}

func optionalURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return is.URL.Error("must be a valid URL").Validate(s)
}

// FieldErrors flattens an ozzo validation error into field → message form
// for template rendering. Non-validation errors map to a single "form" key.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[strings.ToLower(field)] = ferr.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}
