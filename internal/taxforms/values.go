package taxforms

import (
	"strings"

	"github.com/a3tai/pdf-form-filler/internal/fielddef"
)

// Tax identification number types
const (
	TaxIDSSN     = "SSN"
	TaxIDEIN     = "EIN"
	TaxIDITIN    = "ITIN"
	TaxIDForeign = "FOREIGN"
)

// Name is a person's name
type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Full joins the name parts with a single space
func (n Name) Full() string {
	return strings.Join(strings.Fields(n.FirstName+" "+n.LastName), " ")
}

// Address is a postal address
type Address struct {
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Zone        string `json:"zone"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

// Street joins both address lines
func (a Address) Street() string {
	return joinNonEmpty(", ", a.Address1, a.Address2)
}

// Locality is "city, zone postal code"
func (a Address) Locality() string {
	return joinNonEmpty(", ", a.City, joinNonEmpty(" ", a.Zone, a.PostalCode))
}

// LocalityWithCountry appends the country code to Locality
func (a Address) LocalityWithCountry() string {
	return joinNonEmpty(", ", a.Locality(), a.CountryCode)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// stripHyphens removes separators from identification numbers before they
// are split across boxes
func stripHyphens(value, _ any) string {
	return strings.NewReplacer("-", "", " ", "").Replace(fielddef.String(value))
}

// fullName renders a Name value
func fullName(value, _ any) string {
	if n, ok := asName(value); ok {
		return n.Full()
	}
	return joinNonEmpty(" ", fielddef.String(fielddef.Get(value, "firstName")), fielddef.String(fielddef.Get(value, "lastName")))
}

func asName(value any) (Name, bool) {
	switch n := value.(type) {
	case Name:
		return n, true
	case *Name:
		if n != nil {
			return *n, true
		}
	}
	return Name{}, false
}

func asAddress(value any) Address {
	switch a := value.(type) {
	case Address:
		return a
	case *Address:
		if a != nil {
			return *a
		}
	}
	str := func(key string) string { return fielddef.String(fielddef.Get(value, key)) }
	return Address{
		Address1:    str("address1"),
		Address2:    str("address2"),
		City:        str("city"),
		Zone:        str("zone"),
		PostalCode:  str("postalCode"),
		CountryCode: str("countryCode"),
	}
}

func street(value, _ any) string   { return asAddress(value).Street() }
func locality(value, _ any) string { return asAddress(value).Locality() }

func localityWithCountry(value, _ any) string {
	return asAddress(value).LocalityWithCountry()
}

func country(value, _ any) string {
	return strings.TrimSpace(asAddress(value).CountryCode)
}

// taxIDTypeIn guards a definition on the taxIdNumberType attribute
func taxIDTypeIn(kinds ...string) fielddef.Guard {
	return func(_, all any) bool {
		actual := fielddef.String(fielddef.Get(all, "taxIdNumberType"))
		for _, kind := range kinds {
			if strings.EqualFold(actual, kind) {
				return true
			}
		}
		return false
	}
}

// attributeIs guards a definition on another attribute of the values tree
func attributeIs(key, want string) fielddef.Guard {
	return func(_, all any) bool {
		return fielddef.String(fielddef.Get(all, key)) == want
	}
}

// yesNo maps a boolean onto the "yes" and "no" keys of a Combo. Unset
// pointers select nothing.
func yesNo(value, _ any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case *bool:
		if v == nil {
			return ""
		}
		return yesNo(*v, nil)
	}
	return ""
}
