package ingest

import (
	"strings"

	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/registry/charitybase"
	"github.com/oneeighty/connect/internal/registry/companieshouse"
	"gorm.io/datatypes"
)

// NormalizeCharity maps a raw charity record onto the canonical shape.
// Missing fields degrade to the "N/A" sentinel, never to an absent value.
func NormalizeCharity(c charitybase.Charity) organizationdomain.Organization {
	name := organizationdomain.NotAvailable
	if len(c.Names) > 0 && c.Names[0].Value != "" {
		name = c.Names[0].Value
	}

	address := organizationdomain.NotAvailable
	email := organizationdomain.NotAvailable
	postcode := organizationdomain.NotAvailable
	if c.Contact != nil {
		if len(c.Contact.Address) > 0 {
			address = strings.Join(c.Contact.Address, ", ")
		}
		email = orNA(c.Contact.Email)
		postcode = orNA(c.Contact.Postcode)
	}

	return organizationdomain.Organization{
		SourceRecordID: orNA(c.ID),
		Name:           name,
		Status:         "Active",
		CompanyType:    "Charity",
		Address:        address,
		Email:          email,
		Postcode:       postcode,
		Website:        orNA(c.Website),
		Activities:     orNA(c.Activities),
		City:           organizationdomain.NotAvailable,
		Region:         organizationdomain.NotAvailable,
		SourceName:     organizationdomain.SourceCharityBase,
	}
}

// NormalizeCompany maps a raw company record onto the canonical shape.
// The website is synthesized from the company number when the registry
// supplies none.
func NormalizeCompany(c companieshouse.FetchedCompany) organizationdomain.Organization {
	website := organizationdomain.NotAvailable
	if c.CompanyNumber != "" {
		website = "https://find-and-update.company-information.service.gov.uk/company/" + c.CompanyNumber
	}

	org := organizationdomain.Organization{
		SourceRecordID: orNA(c.CompanyNumber),
		Name:           orNA(c.CompanyName),
		Status:         orNA(c.CompanyStatus),
		CompanyType:    orNA(c.CompanyType),
		Address:        orNA(c.RegisteredOfficeAddress.AddressSnippet),
		Email:          organizationdomain.NotAvailable,
		Postcode:       orNA(c.RegisteredOfficeAddress.PostalCode),
		Website:        website,
		Activities:     organizationdomain.NotAvailable,
		City:           organizationdomain.NotAvailable,
		Region:         organizationdomain.NotAvailable,
		SourceName:     organizationdomain.SourceCompaniesHouse,
	}

	if c.Rule != "" {
		org.Metadata = datatypes.JSONMap{"inclusion_rule": c.Rule}
		if len(c.SICCodes) > 0 {
			codes := make([]interface{}, len(c.SICCodes))
			for i, code := range c.SICCodes {
				codes[i] = code
			}
			org.Metadata["sic_codes"] = codes
		}
	}

	return org
}

func orNA(value string) string {
	if value == "" {
		return organizationdomain.NotAvailable
	}
	return value
}
