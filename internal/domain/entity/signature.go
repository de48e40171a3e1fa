package entity

import "encoding/json"

// FieldKind is the kind of a placeable element on a document page
type FieldKind string

const (
	FieldSignature     FieldKind = "signature"
	FieldSignatureDate FieldKind = "signature_date"
	FieldName          FieldKind = "name"
	FieldEmail         FieldKind = "email"
	FieldText          FieldKind = "text_field"
)

// Delivery and verification channels accepted by SignIt
const (
	MethodEmail    = "email"
	MethodSMS      = "sms"
	MethodWhatsApp = "whatsapp"
	MethodNafath   = "nafath"
)

// Signature request statuses accepted by the status update endpoint
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DocumentHandle is the provider-assigned name of an uploaded document
type DocumentHandle struct {
	DocumentName string `json:"document_name"`
}

// ContactMethod maps a channel (email, sms, whatsapp, nafath, absher...) to
// its value. Nafath verification carries a boolean, everything else a string.
type ContactMethod map[string]any

// Position places a field either at absolute page coordinates or relative to
// an anchor text found in the document.
type Position struct {
	AnchorTag string `json:"anchor_tag,omitempty"`
	YOffset   int    `json:"y_offset,omitempty"`
	Page      int    `json:"page,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// IsAnchored reports whether the position is anchor-tag relative
func (p Position) IsAnchored() bool {
	return p.AnchorTag != ""
}

// FieldProperties carries the fill policy of a field
type FieldProperties struct {
	Required       bool   `json:"required"`
	ReadOnly       bool   `json:"read_only,omitempty"`
	PrefilledValue string `json:"prefilled_value,omitempty"`
}

// Field is a placeable element on a document page
type Field struct {
	Kind       FieldKind       `json:"kind"`
	Position   Position        `json:"position"`
	Properties FieldProperties `json:"properties"`
}

// Signatory is a person required to act on a signature request
type Signatory struct {
	FullName           string        `json:"full_name"`
	NotificationMethod ContactMethod `json:"notification_method"`
	VerificationMethod ContactMethod `json:"verification_method"`
	Fields             []Field       `json:"fields,omitempty"`
}

// ========== SignIt API Request Structures ==========

// EmbeddedSignatureRequest is the body of POST /signature-requests/embedded
type EmbeddedSignatureRequest struct {
	SignatureRequest SignatureRequestBody `json:"signature_request"`
	DocumentName     string               `json:"document_name"`
}

// SignatureRequestBody holds the title and signatories of a new request
type SignatureRequestBody struct {
	Title       string      `json:"title"`
	Signatories []Signatory `json:"signatories"`
}

// TemplateSignatureRequest is the body of POST /templates/{id}/signature-requests
type TemplateSignatureRequest struct {
	Name  string         `json:"name"`
	Roles []TemplateRole `json:"roles"`
}

// TemplateRole binds a person to a role defined by a provider template
type TemplateRole struct {
	Role               string        `json:"role"`
	Name               string        `json:"name"`
	NotificationMethod ContactMethod `json:"notification_method"`
	VerificationMethod ContactMethod `json:"verification_method"`
}

// UpdateStatusRequest is the body of PATCH /signature-requests/{id}
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ========== SignIt API Response Structures ==========

// SignatureRequest is the provider-side signature request
type SignatureRequest struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	CreatedDate  string          `json:"created_date"`
	Status       string          `json:"status"`
	Signatories  json.RawMessage `json:"signatories,omitempty"`
	DocumentName string          `json:"document_name,omitempty"`
}

// SigningLinkResponse is the provider response of the signing-link endpoint
type SigningLinkResponse struct {
	URL string `json:"url"`
}

// ListSignatureRequestsParams carries pagination for the list endpoint
type ListSignatureRequestsParams struct {
	Page    int
	PerPage int
}

// ========== Local API Response Structures ==========

// SignatureRequestSummary is the list projection of a signature request
type SignatureRequestSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CreatedDate string `json:"created_date"`
	Status      string `json:"status"`
}

// SignatureRequestDetail is the single-item projection of a signature request
type SignatureRequestDetail struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	CreatedDate  string          `json:"created_date"`
	Status       string          `json:"status"`
	Signatories  json.RawMessage `json:"signatories"`
	DocumentName string          `json:"document_name"`
}

// CreateSignatureResult is returned after a signature request was created
type CreateSignatureResult struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// SigningLink is returned by the signing-link endpoint
type SigningLink struct {
	SigningLink string `json:"signing_link"`
}
