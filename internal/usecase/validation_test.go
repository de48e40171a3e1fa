package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.True(t, IsValidEmail("jane.doe+tag@example.com"))

	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.co"))
	assert.False(t, IsValidEmail(""))
}

func TestParseContractType(t *testing.T) {
	ct, err := ParseContractType(" rental ")
	require.NoError(t, err)
	assert.Equal(t, entity.ContractRental, ct)

	_, err = ParseContractType("")
	assertValidation(t, err, "Contract type is required")

	_, err = ParseContractType("lease")
	assertValidation(t, err, "Invalid contract type")
}

func TestValidateFormDataAcceptsValidForms(t *testing.T) {
	for ct, form := range validForms() {
		assert.NoError(t, ValidateFormData(ct, form), ct)
	}
}

func TestValidateFormDataMissingFields(t *testing.T) {
	tests := []struct {
		contractType entity.ContractType
		drop         []string
		message      string
	}{
		{entity.ContractFreelance, []string{"clientName", "endDate"}, "Missing required fields for freelance: clientName, endDate"},
		{entity.ContractFreelance, []string{"paymentAmount"}, "Missing required fields for freelance: paymentAmount"},
		{entity.ContractRental, []string{"tenantEmail"}, "Missing required fields for rental: tenantEmail"},
		{entity.ContractTemplate, []string{"templateId"}, "Missing required fields for template: templateId"},
		{entity.ContractEmployee, []string{"sendingMethod"}, "Missing required fields for employee: sendingMethod"},
		{entity.ContractPartnership, []string{"partnerName", "partnerEmail"}, "Missing required fields for partnership: partnerName, partnerEmail"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			form := validForms()[tt.contractType]
			for _, key := range tt.drop {
				delete(form, key)
			}
			assertValidation(t, ValidateFormData(tt.contractType, form), tt.message)
		})
	}
}

func TestValidateFormDataBlankCountsAsMissing(t *testing.T) {
	form := validForms()[entity.ContractRental]
	form["tenantName"] = "   "

	assertValidation(t, ValidateFormData(entity.ContractRental, form), "Missing required fields for rental: tenantName")
}

func TestValidateFormDataRequiresForm(t *testing.T) {
	assertValidation(t, ValidateFormData(entity.ContractRental, nil), "Form data is required")
}

func TestValidateFormDataEmailShape(t *testing.T) {
	form := validForms()[entity.ContractRental]
	form["tenantEmail"] = "not-an-email"
	assertValidation(t, ValidateFormData(entity.ContractRental, form), "Invalid email format for tenantEmail")

	// any key mentioning email is checked
	form = validForms()[entity.ContractRental]
	form["backupEmail"] = "nope"
	assertValidation(t, ValidateFormData(entity.ContractRental, form), "Invalid email format for backupEmail")
}

func TestValidateFormDataDates(t *testing.T) {
	form := validForms()[entity.ContractFreelance]
	form["endDate"] = "2024-06-01T00:00:00Z"
	assert.NoError(t, ValidateFormData(entity.ContractFreelance, form))

	form["endDate"] = "June"
	assertValidation(t, ValidateFormData(entity.ContractFreelance, form), "Invalid date format for endDate")
}

func TestValidateEmployeeRules(t *testing.T) {
	tests := []struct {
		name    string
		form    entity.FormData
		message string
	}{
		{
			name:    "unknown channel",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "fax"},
			message: "Invalid sending method",
		},
		{
			name:    "email channel without email",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "email"},
			message: "Missing required fields for employee: clientEmail",
		},
		{
			name:    "sms channel without phone",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "sms"},
			message: "Missing required fields for employee: phoneNumber",
		},
		{
			name:    "phone too short for dial code",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "sms", "phoneNumber": "+96650123", "countryCode": "+966"},
			message: "Phone number must be at least 9 digits",
		},
		{
			name:    "unknown dial code",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "whatsapp", "phoneNumber": "501234567", "countryCode": "+999"},
			message: "Invalid country code",
		},
		{
			name:    "phone too long for dial code",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "sms", "phoneNumber": "+9665012345678", "countryCode": "+966"},
			message: "Phone number cannot exceed 9 digits",
		},
		{
			name:    "verification without type",
			form:    entity.FormData{"clientName": "Eve", "sendingMethod": "email", "clientEmail": "eve@x.com", "needsVerification": true},
			message: "Missing required fields for employee: verificationType",
		},
		{
			name: "absher without national id",
			form: entity.FormData{
				"clientName": "Eve", "sendingMethod": "email", "clientEmail": "eve@x.com",
				"needsVerification": true, "verificationType": "absher",
			},
			message: "Missing required fields for employee: nationalId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValidation(t, ValidateFormData(entity.ContractEmployee, tt.form), tt.message)
		})
	}
}

func TestValidateEmployeeWithPhone(t *testing.T) {
	form := entity.FormData{
		"clientName":        "Eve",
		"sendingMethod":     "whatsapp",
		"phoneNumber":       "+966501234567",
		"countryCode":       "+966",
		"needsVerification": true,
		"verificationType":  "nafath",
	}
	assert.NoError(t, ValidateFormData(entity.ContractEmployee, form))
}

func assertValidation(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok, "expected application error, got %v", err)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, message, appErr.Message)
}
