package service

import (
	"fmt"
	"net"
	"strings"

	"colmap-service/internal/mapping/model"
)

// ValidateFieldValue checks a cell value against the field's compiled
// validation rule. It returns zero or more error strings and never
// fails: fields without a rule accept everything.
func (m *ColumnMapper) ValidateFieldValue(field, value string) []string {
	rule, ok := m.lookup.Rule(field)
	if !ok {
		return nil
	}

	value = strings.TrimSpace(value)
	var errs []string

	switch rule.Type {
	case model.RuleIPAddress:
		if !validIPAddress(value, rule) {
			errs = append(errs, fmt.Sprintf("field %q: %q is not a valid IP address", field, value))
		}
	case model.RuleMACAddress:
		if !validMACAddress(value, rule) {
			errs = append(errs, fmt.Sprintf("field %q: %q is not a valid MAC address", field, value))
		}
	case model.RuleControlID:
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			errs = append(errs, fmt.Sprintf("field %q: %q does not look like a control identifier", field, value))
		}
	case model.RuleRegex:
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			errs = append(errs, fmt.Sprintf("field %q: %q does not match the expected format", field, value))
		}
	case model.RuleBoolean:
		if !containsFold(rule.AllowedValues, value) {
			errs = append(errs, fmt.Sprintf("field %q: %q is not a recognized boolean token", field, value))
		}
	case model.RuleAllowedValues:
		if len(rule.AllowedValues) > 0 && !containsFold(rule.AllowedValues, value) {
			errs = append(errs, fmt.Sprintf("field %q: %q is not one of the allowed values", field, value))
		}
	case model.RuleDate:
		if value == "" {
			errs = append(errs, fmt.Sprintf("field %q: date value is empty", field))
		}
	case model.RuleUniqueIdentifier:
		if value == "" {
			errs = append(errs, fmt.Sprintf("field %q: identifier is empty", field))
		}
	}

	return errs
}

// configured pattern wins; otherwise fall back to the net parsers
func validIPAddress(value string, rule model.ValidationRule) bool {
	if rule.Pattern != nil {
		return rule.Pattern.MatchString(value)
	}
	return net.ParseIP(value) != nil
}

func validMACAddress(value string, rule model.ValidationRule) bool {
	if rule.Pattern != nil {
		return rule.Pattern.MatchString(value)
	}
	_, err := net.ParseMAC(value)
	return err == nil
}

func containsFold(values []string, value string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
