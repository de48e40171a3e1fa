package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// requiredFields lists the form keys each contract type cannot do without
var requiredFields = map[entity.ContractType][]string{
	entity.ContractFreelance:   {"clientName", "clientEmail", "projectName", "startDate", "endDate", "paymentAmount"},
	entity.ContractRental:      {"tenantName", "tenantEmail"},
	entity.ContractTemplate:    {"templateId", "contractorName", "contractorEmail"},
	entity.ContractEmployee:    {"clientName", "sendingMethod"},
	entity.ContractPartnership: {"partnerName", "partnerEmail"},
}

// dateFields are parsed by the field mapper and must be valid dates
var dateFields = map[entity.ContractType][]string{
	entity.ContractFreelance: {"startDate", "endDate"},
}

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ParseContractType validates the raw contract type of a create request
func ParseContractType(raw string) (entity.ContractType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Validation("Contract type is required")
	}

	contractType := entity.ContractType(raw)
	if !contractType.IsValid() {
		return "", apperr.Validation("Invalid contract type")
	}
	return contractType, nil
}

// ValidateFormData checks presence and shape of the form values for a
// contract type. It runs before anything is sent to SignIt.
func ValidateFormData(contractType entity.ContractType, formData entity.FormData) error {
	if !contractType.IsValid() {
		return apperr.Validation("Invalid contract type")
	}
	if formData == nil {
		return apperr.Validation("Form data is required")
	}

	var missing []string
	for _, field := range requiredFields[contractType] {
		if !formData.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation(fmt.Sprintf("Missing required fields for %s: %s", contractType, strings.Join(missing, ", ")))
	}

	if err := validateEmails(formData); err != nil {
		return err
	}

	for _, field := range dateFields[contractType] {
		if _, err := parseDate(formData.String(field)); err != nil {
			return apperr.Validation(fmt.Sprintf("Invalid date format for %s", field))
		}
	}

	if contractType == entity.ContractEmployee {
		return validateEmployee(formData)
	}

	return nil
}

func validateEmails(formData entity.FormData) error {
	keys := make([]string, 0, len(formData))
	for key := range formData {
		if strings.Contains(strings.ToLower(key), "email") {
			keys = append(keys, key)
		}
	}
	// deterministic error for forms with several bad emails
	sort.Strings(keys)

	for _, key := range keys {
		value := formData.String(key)
		if value == "" {
			continue
		}
		if !IsValidEmail(value) {
			return apperr.Validation(fmt.Sprintf("Invalid email format for %s", key))
		}
	}
	return nil
}

func validateEmployee(formData entity.FormData) error {
	method := formData.String("sendingMethod")
	switch method {
	case entity.MethodEmail:
		if !formData.Has("clientEmail") {
			return apperr.Validation("Missing required fields for employee: clientEmail")
		}
	case entity.MethodSMS, entity.MethodWhatsApp:
		if !formData.Has("phoneNumber") {
			return apperr.Validation("Missing required fields for employee: phoneNumber")
		}
		if dialCode := formData.String("countryCode"); dialCode != "" {
			if err := ValidatePhoneNumber(formData.String("phoneNumber"), dialCode); err != nil {
				return apperr.Validation(capitalize(err.Error())).Wrap(err)
			}
		}
	default:
		return apperr.Validation("Invalid sending method")
	}

	if !formData.Bool("needsVerification") {
		return nil
	}

	verificationType := formData.String("verificationType")
	if verificationType == "" {
		return apperr.Validation("Missing required fields for employee: verificationType")
	}
	if verificationType != entity.MethodNafath && !formData.Has("nationalId") {
		return apperr.Validation("Missing required fields for employee: nationalId")
	}

	return nil
}

// capitalize turns an error string into a client message
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseDate accepts calendar dates and RFC 3339 timestamps
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
