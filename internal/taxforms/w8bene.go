package taxforms

import (
	fd "github.com/a3tai/pdf-form-filler/internal/fielddef"
)

// Chapter 3 statuses of line 4
const (
	Chapter3Corporation       = "CORPORATION"
	Chapter3DisregardedEntity = "DISREGARDED_ENTITY"
	Chapter3Partnership       = "PARTNERSHIP"
	Chapter3SimpleTrust       = "SIMPLE_TRUST"
	Chapter3GrantorTrust      = "GRANTOR_TRUST"
	Chapter3ComplexTrust      = "COMPLEX_TRUST"
	Chapter3Estate            = "ESTATE"
	Chapter3Government        = "GOVERNMENT"
	Chapter3CentralBank       = "CENTRAL_BANK_OF_ISSUE"
	Chapter3TaxExempt         = "TAX_EXEMPT_ORGANIZATION"
	Chapter3PrivateFoundation = "PRIVATE_FOUNDATION"
	Chapter3International     = "INTERNATIONAL_ORGANIZATION"
)

// Chapter 4 statuses of line 5, the ones the platform supports
const (
	Chapter4NonparticipatingFFI = "NONPARTICIPATING_FFI"
	Chapter4ParticipatingFFI    = "PARTICIPATING_FFI"
	Chapter4ReportingModel1FFI  = "REPORTING_MODEL_1_FFI"
	Chapter4ReportingModel2FFI  = "REPORTING_MODEL_2_FFI"
	Chapter4ExceptedNFFE        = "EXCEPTED_NFFE"
	Chapter4ActiveNFFE          = "ACTIVE_NFFE"
	Chapter4PassiveNFFE         = "PASSIVE_NFFE"
	Chapter4PubliclyTradedNFFE  = "PUBLICLY_TRADED_NFFE"
)

const (
	w8benePage1 = "topmostSubform[0].Page1[0]."
	w8benePage2 = "topmostSubform[0].Page2[0]."
	w8benePage8 = "topmostSubform[0].Page8[0]."
)

// W8BENEValues are the attributes of a Form W-8BEN-E
type W8BENEValues struct {
	OrganizationName        string   `json:"organizationName"`
	IncorporationCountry    string   `json:"incorporationCountry"`
	DisregardedEntityName   string   `json:"disregardedEntityName"`
	Chapter3Status          string   `json:"chapter3Status"`
	IsHybridTreatyClaim     *bool    `json:"isHybridTreatyClaim"`
	Chapter4Status          string   `json:"chapter4Status"`
	PermanentAddress        Address  `json:"permanentAddress"`
	MailingAddress          *Address `json:"mailingAddress"`
	TaxIDNumber             string   `json:"taxIdNumber"`
	GIIN                    string   `json:"giin"`
	ForeignTaxIDNumber      string   `json:"foreignTaxIdNumber"`
	ForeignTaxIDNotRequired bool     `json:"foreignTaxIdNotRequired"`
	ReferenceNumbers        string   `json:"referenceNumbers"`
	Signer                  Name     `json:"signer"`
	CapacityToSign          bool     `json:"capacityToSign"`
	IsSigned                bool     `json:"isSigned"`
	Date                    string   `json:"date"`
}

func (v *W8BENEValues) SignerName() string    { return v.Signer.Full() }
func (v *W8BENEValues) Signed() bool          { return v.IsSigned }
func (v *W8BENEValues) SignatureDate() string { return "" }

// W8BENE is Form W-8BEN-E (Rev. October 2021). Its template breaks the
// flatten path, so fields are only marked read-only.
var W8BENE = &Form{
	Type:     TypeW8BENE,
	Title:    "Certificate of Status of Beneficial Owner for United States Tax Withholding and Reporting (Entities)",
	Template: "fw8bene.pdf",
	Pages:    8,
	Fields: fd.Fields{
		"organizationName":      fd.Simple{Path: w8benePage1 + "f1_1[0]"},
		"incorporationCountry":  fd.Simple{Path: w8benePage1 + "f1_2[0]"},
		"disregardedEntityName": fd.Simple{Path: w8benePage1 + "f1_3[0]"},
		"chapter3Status": fd.Combo{Options: map[string]string{
			Chapter3Corporation:       w8benePage1 + "c1_1[0]",
			Chapter3DisregardedEntity: w8benePage1 + "c1_1[1]",
			Chapter3Partnership:       w8benePage1 + "c1_1[2]",
			Chapter3SimpleTrust:       w8benePage1 + "c1_1[3]",
			Chapter3GrantorTrust:      w8benePage1 + "c1_1[4]",
			Chapter3ComplexTrust:      w8benePage1 + "c1_1[5]",
			Chapter3Estate:            w8benePage1 + "c1_1[6]",
			Chapter3Government:        w8benePage1 + "c1_1[7]",
			Chapter3CentralBank:       w8benePage1 + "c1_1[8]",
			Chapter3TaxExempt:         w8benePage1 + "c1_1[9]",
			Chapter3PrivateFoundation: w8benePage1 + "c1_1[10]",
			Chapter3International:     w8benePage1 + "c1_1[11]",
		}},
		"isHybridTreatyClaim": fd.Combo{
			Options: map[string]string{
				"yes": w8benePage1 + "c1_2[0]",
				"no":  w8benePage1 + "c1_2[1]",
			},
			Transform: yesNo,
		},
		"chapter4Status": fd.Combo{Options: map[string]string{
			Chapter4NonparticipatingFFI: w8benePage1 + "c1_3[0]",
			Chapter4ParticipatingFFI:    w8benePage1 + "c1_3[1]",
			Chapter4ReportingModel1FFI:  w8benePage1 + "c1_3[2]",
			Chapter4ReportingModel2FFI:  w8benePage1 + "c1_3[3]",
			Chapter4ExceptedNFFE:        w8benePage1 + "c1_3[4]",
			Chapter4ActiveNFFE:          w8benePage1 + "c1_3[5]",
			Chapter4PassiveNFFE:         w8benePage1 + "c1_3[6]",
			Chapter4PubliclyTradedNFFE:  w8benePage1 + "c1_3[7]",
		}},
		"permanentAddress": fd.Combine(
			fd.Advanced{Path: w8benePage1 + "f1_4[0]", Transform: street},
			fd.Advanced{Path: w8benePage1 + "f1_5[0]", Transform: locality},
			fd.Advanced{Path: w8benePage1 + "f1_6[0]", Transform: country},
		),
		"mailingAddress": fd.Combine(
			fd.Advanced{Path: w8benePage1 + "f1_7[0]", Transform: street},
			fd.Advanced{Path: w8benePage1 + "f1_8[0]", Transform: localityWithCountry},
		),
		"taxIdNumber":             fd.Simple{Path: w8benePage1 + "f1_9[0]"},
		"giin":                    fd.Simple{Path: w8benePage2 + "f2_1[0]"},
		"foreignTaxIdNumber":      fd.Simple{Path: w8benePage2 + "f2_2[0]"},
		"foreignTaxIdNotRequired": fd.Simple{Path: w8benePage2 + "c2_1[0]"},
		"referenceNumbers":        fd.Simple{Path: w8benePage2 + "f2_3[0]"},
		"signer":                  fd.Advanced{Path: w8benePage8 + "f8_31[0]", Transform: fullName},
		"capacityToSign":          fd.Simple{Path: w8benePage8 + "c8_3[0]"},
		"date":                    fd.Simple{Path: w8benePage8 + "f8_32[0]"},
	},
	UseFallbackReadonly: true,
	NewValues:           func() Values { return &W8BENEValues{} },
	Signature:           FieldAt(w8benePage8+"c8_3[0]", 40, 14),
}
