package taxforms

import (
	fd "github.com/a3tai/pdf-form-filler/internal/fielddef"
)

// Federal tax classifications of line 3a
const (
	ClassificationIndividual  = "INDIVIDUAL"
	ClassificationCCorp       = "C_CORPORATION"
	ClassificationSCorp       = "S_CORPORATION"
	ClassificationPartnership = "PARTNERSHIP"
	ClassificationTrustEstate = "TRUST_ESTATE"
	ClassificationLLC         = "LLC"
	ClassificationOther       = "OTHER"
)

const (
	w9Page1   = "topmostSubform[0].Page1[0]."
	w9Boxes   = w9Page1 + "Boxes3a-b_ReadOrder[0]."
	w9Address = w9Page1 + "Address_ReadOrder[0]."
)

// W9Exemptions are the codes of line 4
type W9Exemptions struct {
	PayeeCode string `json:"payeeCode"`
	FATCACode string `json:"fatcaCode"`
}

// W9Values are the attributes of a Form W-9
type W9Values struct {
	Signer              Name         `json:"signer"`
	BusinessName        string       `json:"businessName"`
	TaxClassification   string       `json:"taxClassification"`
	LLCClassification   string       `json:"llcClassification"`
	OtherClassification string       `json:"otherClassification"`
	HasForeignPartners  bool         `json:"hasForeignPartners"`
	Exemptions          W9Exemptions `json:"exemptions"`
	Address             Address      `json:"address"`
	Requester           string       `json:"requester"`
	AccountNumbers      string       `json:"accountNumbers"`
	TaxIDNumberType     string       `json:"taxIdNumberType"`
	TaxIDNumber         string       `json:"taxIdNumber"`
	IsSigned            bool         `json:"isSigned"`
	Date                string       `json:"date"`
}

func (v *W9Values) SignerName() string    { return v.Signer.Full() }
func (v *W9Values) Signed() bool          { return v.IsSigned }
func (v *W9Values) SignatureDate() string { return v.Date }

// W9 is Form W-9 (Rev. March 2024). Individuals and sole proprietors
// enter their SSN or ITIN in the SSN boxes, every other payee its EIN.
var W9 = &Form{
	Type:     TypeW9,
	Title:    "Request for Taxpayer Identification Number and Certification",
	Template: "fw9.pdf",
	Pages:    6,
	Fields: fd.Fields{
		"signer":       fd.Advanced{Path: w9Page1 + "f1_01[0]", Transform: fullName},
		"businessName": fd.Simple{Path: w9Page1 + "f1_02[0]"},
		"taxClassification": fd.Combo{Options: map[string]string{
			ClassificationIndividual:  w9Boxes + "c1_1[0]",
			ClassificationCCorp:       w9Boxes + "c1_1[1]",
			ClassificationSCorp:       w9Boxes + "c1_1[2]",
			ClassificationPartnership: w9Boxes + "c1_1[3]",
			ClassificationTrustEstate: w9Boxes + "c1_1[4]",
			ClassificationLLC:         w9Boxes + "c1_1[5]",
			ClassificationOther:       w9Boxes + "c1_1[6]",
		}},
		"llcClassification": fd.Advanced{
			Path: w9Boxes + "f1_03[0]",
			If:   attributeIs("taxClassification", ClassificationLLC),
		},
		"otherClassification": fd.Advanced{
			Path: w9Boxes + "f1_04[0]",
			If:   attributeIs("taxClassification", ClassificationOther),
		},
		"hasForeignPartners": fd.Simple{Path: w9Boxes + "c1_2[0]"},
		"exemptions": fd.Nested{Fields: fd.Fields{
			"payeeCode": fd.Simple{Path: w9Page1 + "f1_05[0]"},
			"fatcaCode": fd.Simple{Path: w9Page1 + "f1_06[0]"},
		}},
		"address": fd.Combine(
			fd.Advanced{Path: w9Address + "f1_07[0]", Transform: street},
			fd.Advanced{Path: w9Address + "f1_08[0]", Transform: locality},
		),
		"requester":      fd.Simple{Path: w9Page1 + "f1_09[0]"},
		"accountNumbers": fd.Simple{Path: w9Page1 + "f1_10[0]"},
		"taxIdNumber": fd.Combine(
			fd.SplitText{
				Parts: []fd.Part{
					fd.Fixed(w9Page1+"f1_11[0]", 3),
					fd.Fixed(w9Page1+"f1_12[0]", 2),
					fd.Fixed(w9Page1+"f1_13[0]", 4),
				},
				Transform: stripHyphens,
				If:        taxIDTypeIn(TaxIDSSN, TaxIDITIN),
			},
			fd.SplitText{
				Parts: []fd.Part{
					fd.Fixed(w9Page1+"f1_14[0]", 2),
					fd.Auto(w9Page1 + "f1_15[0]"),
				},
				Transform: stripHyphens,
				If:        taxIDTypeIn(TaxIDEIN),
			},
		),
	},
	NewValues: func() Values { return &W9Values{} },
	Signature: FixedAt(Spot{Page: 0, X: 150, Y: 208, HasDate: true, DateX: 420, DateY: 208}),
}
