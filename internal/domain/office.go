package domain

import "strings"

// AddressDelimiter separates street and locality in the combined upstream address.
const AddressDelimiter = " - "

// OfficeInfo is the contact card of one regional social-service office.
type OfficeInfo struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	PhoneURI       string `json:"phoneUri,omitempty"`
	Email          string `json:"email"`
	ContactFormURL string `json:"contactFormUrl"`
	InfoURL        string `json:"infoUrl"`
	AddressLine    string `json:"addressLine"`
	Locality       string `json:"locality"`
	MapURL         string `json:"mapUrl"`
}

// HasValidInfo reports whether at least one contact field is non-blank.
func (o OfficeInfo) HasValidInfo() bool {
	for _, field := range []string{
		o.Name, o.Phone, o.Email, o.ContactFormURL,
		o.InfoURL, o.AddressLine, o.Locality, o.MapURL,
	} {
		if strings.TrimSpace(field) != "" {
			return true
		}
	}
	return false
}

// SplitAddress splits "street - locality". Segments past the second are ignored.
func SplitAddress(combined string) (addressLine, locality string) {
	parts := strings.Split(combined, AddressDelimiter)
	addressLine = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		locality = strings.TrimSpace(parts[1])
	}
	return addressLine, locality
}
