package taxforms

import (
	fd "github.com/a3tai/pdf-form-filler/internal/fielddef"
)

const w8benPage1 = "topmostSubform[0].Page1[0]."

// Treaty is a claim of tax treaty benefits
type Treaty struct {
	Country              string `json:"country"`
	Article              string `json:"article"`
	Rate                 string `json:"rate"`
	IncomeType           string `json:"incomeType"`
	AdditionalConditions string `json:"additionalConditions"`
}

// W8BENValues are the attributes of a Form W-8BEN
type W8BENValues struct {
	Signer                  Name     `json:"signer"`
	CitizenshipCountry      string   `json:"citizenshipCountry"`
	PermanentAddress        Address  `json:"permanentAddress"`
	MailingAddress          *Address `json:"mailingAddress"`
	TaxIDNumberType         string   `json:"taxIdNumberType"`
	TaxIDNumber             string   `json:"taxIdNumber"`
	ForeignTaxIDNumber      string   `json:"foreignTaxIdNumber"`
	ForeignTaxIDNotRequired bool     `json:"foreignTaxIdNotRequired"`
	ReferenceNumbers        string   `json:"referenceNumbers"`
	DateOfBirth             string   `json:"dateOfBirth"`
	Treaty                  *Treaty  `json:"treaty"`
	CapacityToSign          bool     `json:"capacityToSign"`
	IsSigned                bool     `json:"isSigned"`
	Date                    string   `json:"date"`
}

func (v *W8BENValues) SignerName() string { return v.Signer.Full() }
func (v *W8BENValues) Signed() bool       { return v.IsSigned }

// SignatureDate is empty, the date has its own field
func (v *W8BENValues) SignatureDate() string { return "" }

// W8BEN is Form W-8BEN (Rev. October 2021)
var W8BEN = &Form{
	Type:     TypeW8BEN,
	Title:    "Certificate of Foreign Status of Beneficial Owner for United States Tax Withholding and Reporting (Individuals)",
	Template: "fw8ben.pdf",
	Pages:    1,
	Fields: fd.Fields{
		"signer": fd.Combine(
			fd.Advanced{Path: w8benPage1 + "f_1[0]", Transform: fullName},
			fd.Advanced{Path: w8benPage1 + "f_21[0]", Transform: fullName},
		),
		"citizenshipCountry": fd.Simple{Path: w8benPage1 + "f_2[0]"},
		"permanentAddress": fd.Combine(
			fd.Advanced{Path: w8benPage1 + "f_3[0]", Transform: street},
			fd.Advanced{Path: w8benPage1 + "f_4[0]", Transform: locality},
			fd.Advanced{Path: w8benPage1 + "f_5[0]", Transform: country},
		),
		"mailingAddress": fd.Combine(
			fd.Advanced{Path: w8benPage1 + "f_6[0]", Transform: street},
			fd.Advanced{Path: w8benPage1 + "f_7[0]", Transform: locality},
			fd.Advanced{Path: w8benPage1 + "f_8[0]", Transform: country},
		),
		"taxIdNumber": fd.Advanced{
			Path: w8benPage1 + "f_9[0]",
			If:   taxIDTypeIn(TaxIDSSN, TaxIDITIN),
		},
		"foreignTaxIdNumber":      fd.Simple{Path: w8benPage1 + "f_10[0]"},
		"foreignTaxIdNotRequired": fd.Simple{Path: w8benPage1 + "c1_01[0]"},
		"referenceNumbers":        fd.Simple{Path: w8benPage1 + "f_11[0]"},
		"dateOfBirth":             fd.Simple{Path: w8benPage1 + "f_12[0]"},
		"treaty": fd.Nested{Fields: fd.Fields{
			"country":              fd.Simple{Path: w8benPage1 + "f_13[0]"},
			"article":              fd.Simple{Path: w8benPage1 + "f_14[0]"},
			"rate":                 fd.Simple{Path: w8benPage1 + "f_15[0]"},
			"incomeType":           fd.Simple{Path: w8benPage1 + "f_16[0]"},
			"additionalConditions": fd.Simple{Path: w8benPage1 + "f_17[0]"},
		}},
		"capacityToSign": fd.Simple{Path: w8benPage1 + "c1_02[0]"},
		"date":           fd.Simple{Path: w8benPage1 + "f_20[0]"},
	},
	NewValues: func() Values { return &W8BENValues{} },
	// The signature line sits above the capacity check box
	Signature: FieldAt(w8benPage1+"c1_02[0]", 40, 14),
}
