package usecase

import (
	"errors"
	"fmt"
	"time"

	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

const displayDateLayout = "02/01/2006"

// ErrUnsupportedContractType is returned for contract types without a layout
var ErrUnsupportedContractType = errors.New("unsupported contract type")

// SignerBuilder maps the form values of one contract type to its signatories
type SignerBuilder func(formData entity.FormData) ([]entity.Signatory, error)

// FieldMapper places the fields of each contract template for its signers
type FieldMapper interface {
	MapSignatories(contractType entity.ContractType, formData entity.FormData) ([]entity.Signatory, error)
}

type fieldMapper struct {
	builders map[entity.ContractType]SignerBuilder
	now      func() time.Time
}

func NewFieldMapper() FieldMapper {
	return newFieldMapper(time.Now)
}

func newFieldMapper(now func() time.Time) *fieldMapper {
	m := &fieldMapper{now: now}
	m.builders = map[entity.ContractType]SignerBuilder{
		entity.ContractFreelance:   freelanceSigners,
		entity.ContractRental:      rentalSigners,
		entity.ContractTemplate:    templateSigners,
		entity.ContractEmployee:    employeeSigners,
		entity.ContractPartnership: m.partnershipSigners,
	}
	return m
}

func (m *fieldMapper) MapSignatories(contractType entity.ContractType, formData entity.FormData) ([]entity.Signatory, error) {
	build, ok := m.builders[contractType]
	if !ok {
		return nil, apperr.BadRequest(fmt.Sprintf("Unsupported contract type: %s", contractType)).Wrap(ErrUnsupportedContractType)
	}
	return build(formData)
}

// VerificationPolicy decides the verification block of a signatory
type VerificationPolicy interface {
	verificationMethod(notification entity.ContactMethod) entity.ContactMethod
}

// Verified asks SignIt to verify the signer with an identity provider.
// Nafath takes no value, every other method takes the national id.
type Verified struct {
	Method     string
	NationalID string
}

func (v Verified) verificationMethod(entity.ContactMethod) entity.ContactMethod {
	if v.Method == entity.MethodNafath {
		return entity.ContactMethod{v.Method: true}
	}
	return entity.ContactMethod{v.Method: v.NationalID}
}

// Unverified reuses the notification channel as verification
type Unverified struct{}

func (Unverified) verificationMethod(notification entity.ContactMethod) entity.ContactMethod {
	mirrored := make(entity.ContactMethod, len(notification))
	for k, v := range notification {
		mirrored[k] = v
	}
	return mirrored
}

// VerificationPolicyFor reads the employee form's verification choice
func VerificationPolicyFor(formData entity.FormData) VerificationPolicy {
	if !formData.Bool("needsVerification") {
		return Unverified{}
	}
	return Verified{
		Method:     formData.String("verificationType"),
		NationalID: formData.String("nationalId"),
	}
}

func emailContact(email string) entity.ContactMethod {
	return entity.ContactMethod{entity.MethodEmail: email}
}

func absolute(page, x, y, width, height int) entity.Position {
	return entity.Position{Page: page, X: x, Y: y, Width: width, Height: height}
}

func required(kind entity.FieldKind, pos entity.Position) entity.Field {
	return entity.Field{
		Kind:       kind,
		Position:   pos,
		Properties: entity.FieldProperties{Required: true},
	}
}

func prefilled(kind entity.FieldKind, pos entity.Position, value string) entity.Field {
	return entity.Field{
		Kind:     kind,
		Position: pos,
		Properties: entity.FieldProperties{
			ReadOnly:       true,
			PrefilledValue: value,
		},
	}
}

func formatDate(formData entity.FormData, key string) (string, error) {
	t, err := parseDate(formData.String(key))
	if err != nil {
		return "", apperr.Validation(fmt.Sprintf("Invalid date format for %s", key))
	}
	return t.Format(displayDateLayout), nil
}

func freelanceSigners(formData entity.FormData) ([]entity.Signatory, error) {
	startDate, err := formatDate(formData, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := formatDate(formData, "endDate")
	if err != nil {
		return nil, err
	}

	clientName := formData.String("clientName")
	clientEmail := formData.String("clientEmail")

	return []entity.Signatory{{
		FullName:           clientName,
		NotificationMethod: emailContact(clientEmail),
		VerificationMethod: emailContact(clientEmail),
		Fields: []entity.Field{
			// page 1: agreement summary, filled from the form
			prefilled(entity.FieldSignatureDate, absolute(1, 392, 666, 112, 20), startDate),
			prefilled(entity.FieldName, absolute(1, 237, 652, 120, 20), clientName),
			prefilled(entity.FieldText, absolute(1, 114, 556, 260, 20), formData.String("projectName")),
			prefilled(entity.FieldSignatureDate, absolute(1, 292, 443, 116, 20), startDate),
			prefilled(entity.FieldSignatureDate, absolute(1, 131, 423, 120, 20), endDate),
			prefilled(entity.FieldText, absolute(1, 234, 354, 144, 20), "$"+formData.String("paymentAmount")),
			// page 3: signature block
			required(entity.FieldSignature, absolute(3, 73, 448, 120, 30)),
			required(entity.FieldName, absolute(3, 110, 383, 180, 30)),
			required(entity.FieldEmail, absolute(3, 110, 343, 180, 30)),
			required(entity.FieldSignatureDate, absolute(3, 110, 304, 80, 30)),
		},
	}}, nil
}

func rentalSigners(formData entity.FormData) ([]entity.Signatory, error) {
	tenantEmail := formData.String("tenantEmail")

	return []entity.Signatory{{
		FullName:           formData.String("tenantName"),
		NotificationMethod: emailContact(tenantEmail),
		VerificationMethod: emailContact(tenantEmail),
		Fields: []entity.Field{
			{
				Kind:       entity.FieldSignatureDate,
				Position:   absolute(1, 368, 676, 80, 20),
				Properties: entity.FieldProperties{ReadOnly: true},
			},
			prefilled(entity.FieldName, absolute(1, 175, 655, 150, 30), formData.String("tenantName")),
			required(entity.FieldSignature, absolute(1, 119, 100, 110, 20)),
			{
				Kind:       entity.FieldSignatureDate,
				Position:   absolute(1, 118, 69, 110, 20),
				Properties: entity.FieldProperties{ReadOnly: true},
			},
		},
	}}, nil
}

// templateSigners yields the single contractor; the provider template owns
// the field layout
func templateSigners(formData entity.FormData) ([]entity.Signatory, error) {
	contractorEmail := formData.String("contractorEmail")

	return []entity.Signatory{{
		FullName:           formData.String("contractorName"),
		NotificationMethod: emailContact(contractorEmail),
		VerificationMethod: emailContact(contractorEmail),
	}}, nil
}

func employeeSigners(formData entity.FormData) ([]entity.Signatory, error) {
	method := formData.String("sendingMethod")
	notification := entity.ContactMethod{method: employeeContact(formData, method)}

	return []entity.Signatory{{
		FullName:           formData.String("clientName"),
		NotificationMethod: notification,
		VerificationMethod: VerificationPolicyFor(formData).verificationMethod(notification),
		Fields: []entity.Field{
			required(entity.FieldName, absolute(1, 100, 637, 118, 20)),
			required(entity.FieldSignature, absolute(2, 73, 305, 120, 30)),
			required(entity.FieldName, absolute(2, 133, 238, 180, 30)),
			required(entity.FieldEmail, absolute(2, 133, 206, 180, 30)),
			required(entity.FieldSignatureDate, absolute(2, 133, 178, 80, 30)),
		},
	}}, nil
}

// employeeContact picks the address matching the sending channel, falling
// back to whichever one the form carries
func employeeContact(formData entity.FormData, method string) string {
	email := formData.String("clientEmail")
	phone := formData.String("phoneNumber")

	if method == entity.MethodEmail || phone == "" {
		if email != "" {
			return email
		}
		return phone
	}
	return phone
}

func (m *fieldMapper) partnershipSigners(formData entity.FormData) ([]entity.Signatory, error) {
	partnerName := formData.String("partnerName")
	partnerEmail := formData.String("partnerEmail")

	return []entity.Signatory{{
		FullName:           partnerName,
		NotificationMethod: emailContact(partnerEmail),
		VerificationMethod: emailContact(partnerEmail),
		Fields: []entity.Field{
			prefilled(entity.FieldSignatureDate, entity.Position{AnchorTag: "[Signing Date]"}, m.now().Format(displayDateLayout)),
			required(entity.FieldSignature, entity.Position{
				AnchorTag: partnerName,
				YOffset:   -40,
				Width:     140,
				Height:    30,
			}),
		},
	}}, nil
}
