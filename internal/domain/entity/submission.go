package entity

import "time"

// Submission records what this service submitted for a signature request.
// SignIt stays the system of record; this is a local lookup aid.
type Submission struct {
	SignatureRequestID string       `json:"signature_request_id"`
	ContractType       ContractType `json:"contract_type"`
	Title              string       `json:"title"`
	DocumentName       string       `json:"document_name,omitempty"`
	TemplateID         string       `json:"template_id,omitempty"`
	SignatoryName      string       `json:"signatory_name"`
	SignatoryCount     int          `json:"signatory_count"`
	FieldCount         int          `json:"field_count"`
	UploadedFile       bool         `json:"uploaded_file"`
	CreatedAt          time.Time    `json:"created_at"`
}
