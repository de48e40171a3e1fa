package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ContractType identifies one of the supported contract forms
type ContractType string

const (
	ContractFreelance   ContractType = "freelance"
	ContractRental      ContractType = "rental"
	ContractTemplate    ContractType = "template"
	ContractEmployee    ContractType = "employee"
	ContractPartnership ContractType = "partnership"
)

// ContractTypes lists every supported contract type in display order
var ContractTypes = []ContractType{
	ContractFreelance,
	ContractRental,
	ContractTemplate,
	ContractEmployee,
	ContractPartnership,
}

// IsValid reports whether t is a supported contract type
func (t ContractType) IsValid() bool {
	for _, ct := range ContractTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// RequiresUpload reports whether the contract is signed on a user supplied PDF
// instead of a static template
func (t ContractType) RequiresUpload() bool {
	return t == ContractRental || t == ContractPartnership
}

// TemplateFile returns the static template filename for the contract type
func (t ContractType) TemplateFile() string {
	return string(t) + "_template.pdf"
}

// DisplayName is used to build default request titles
func (t ContractType) DisplayName() string {
	switch t {
	case ContractTemplate:
		return "Contractor"
	case ContractEmployee:
		return "Employee"
	default:
		s := string(t)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// FormData holds the values submitted by a contract form. Values are decoded
// from JSON, so strings, booleans and numbers can all appear.
type FormData map[string]any

// String returns the value under key as a trimmed string. Numbers are
// formatted without exponent, missing keys yield "".
func (f FormData) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Bool interprets the value under key as a flag. Multipart submissions carry
// "true"/"false" strings, JSON submissions carry booleans.
func (f FormData) Bool(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return err == nil && b
	case float64:
		return val != 0
	default:
		return false
	}
}

// Has reports whether key carries a non-empty value
func (f FormData) Has(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	default:
		return true
	}
}
