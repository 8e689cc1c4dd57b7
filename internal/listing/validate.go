package listing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Draft is the editable part of a listing, as submitted by the listing form.
type Draft struct {
	Title            string          `json:"title"`
	CompanyName      string          `json:"companyName"`
	Location         string          `json:"location"`
	ApplyURL         string          `json:"applyUrl"`
	Type             Type            `json:"type"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel"`
	Salary           float64         `json:"salary"`
	ShortDescription string          `json:"shortDescription"`
	Description      string          `json:"description"`
}

const draftSchema = `{
  "type": "object",
  "required": ["title", "companyName", "location", "applyUrl", "type",
               "experienceLevel", "salary", "shortDescription", "description"],
  "properties": {
    "title":            {"type": "string", "minLength": 1},
    "companyName":      {"type": "string", "minLength": 1},
    "location":         {"type": "string", "minLength": 1},
    "applyUrl":         {"type": "string", "format": "uri"},
    "type":             {"enum": ["Full Time", "Part Time", "Internship"]},
    "experienceLevel":  {"enum": ["Junior", "Mid-Level", "Senior"]},
    "salary":           {"type": "number", "minimum": 0},
    "shortDescription": {"type": "string", "minLength": 1, "maxLength": 200},
    "description":      {"type": "string", "minLength": 1}
  }
}`

var draftSchemaLoader = gojsonschema.NewStringLoader(draftSchema)

// ValidateDraft checks a raw JSON listing payload against the listing form
// schema and decodes it. Schema violations are reported as *ValidationError.
func ValidateDraft(raw []byte) (*Draft, error) {
	res, err := gojsonschema.Validate(draftSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid listing payload: %v", err)}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &ValidationError{Msg: strings.Join(msgs, "; ")}
	}

	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid listing payload: %v", err)}
	}
	d.Title = strings.TrimSpace(d.Title)
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	d.Location = strings.TrimSpace(d.Location)
	return &d, nil
}
