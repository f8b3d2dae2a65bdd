package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/registry/charitybase"
	"github.com/oneeighty/connect/internal/registry/companieshouse"
)

func TestNormalizeCharity(t *testing.T) {
	charity := charitybase.Charity{
		ID:         "charity-1",
		Names:      []charitybase.CharityName{{Value: "Example Trust"}},
		Activities: "Youth programmes in Sheffield",
		Contact: &charitybase.Contact{
			Address:  []string{"1 High Street", "Sheffield"},
			Email:    "info@example.org",
			Postcode: "S1 2JE",
		},
		Website: "https://example.org",
	}

	org := NormalizeCharity(charity)

	assert.Equal(t, "charity-1", org.SourceRecordID)
	assert.Equal(t, "Example Trust", org.Name)
	assert.Equal(t, "Active", org.Status)
	assert.Equal(t, "Charity", org.CompanyType)
	assert.Equal(t, "1 High Street, Sheffield", org.Address)
	assert.Equal(t, "info@example.org", org.Email)
	assert.Equal(t, "S1 2JE", org.Postcode)
	assert.Equal(t, "https://example.org", org.Website)
	assert.Equal(t, organizationdomain.SourceCharityBase, org.SourceName)
}

func TestNormalizeCharityMissingFields(t *testing.T) {
	org := NormalizeCharity(charitybase.Charity{ID: "charity-2"})

	assert.Equal(t, organizationdomain.NotAvailable, org.Name)
	assert.Equal(t, organizationdomain.NotAvailable, org.Address)
	assert.Equal(t, organizationdomain.NotAvailable, org.Email)
	assert.Equal(t, organizationdomain.NotAvailable, org.Postcode)
	assert.Equal(t, organizationdomain.NotAvailable, org.Website)
	assert.Equal(t, organizationdomain.NotAvailable, org.Activities)
	assert.Equal(t, organizationdomain.NotAvailable, org.City)
	assert.Equal(t, organizationdomain.NotAvailable, org.Region)
}

func TestNormalizeCompany(t *testing.T) {
	company := companieshouse.FetchedCompany{
		Rule:     companieshouse.RuleSICFiltered,
		SICCodes: []string{"88990"},
	}
	company.CompanyNumber = "01234567"
	company.CompanyName = "Example CIC"
	company.CompanyStatus = "active"
	company.CompanyType = "private-limited-guarant-nsc"
	company.RegisteredOfficeAddress.AddressSnippet = "2 Low Road, Leeds"
	company.RegisteredOfficeAddress.PostalCode = "LS1 4AP"

	org := NormalizeCompany(company)

	assert.Equal(t, "01234567", org.SourceRecordID)
	assert.Equal(t, "Example CIC", org.Name)
	assert.Equal(t, "active", org.Status)
	assert.Equal(t, "private-limited-guarant-nsc", org.CompanyType)
	assert.Equal(t, "2 Low Road, Leeds", org.Address)
	assert.Equal(t, "LS1 4AP", org.Postcode)
	assert.Equal(t, organizationdomain.NotAvailable, org.Email)
	assert.Equal(t, organizationdomain.NotAvailable, org.Activities)
	assert.Equal(t, "https://find-and-update.company-information.service.gov.uk/company/01234567", org.Website)
	assert.Equal(t, organizationdomain.SourceCompaniesHouse, org.SourceName)
	assert.Equal(t, companieshouse.RuleSICFiltered, org.Metadata["inclusion_rule"])
}

func TestNormalizeCompanyWithoutNumber(t *testing.T) {
	org := NormalizeCompany(companieshouse.FetchedCompany{})

	assert.Equal(t, organizationdomain.NotAvailable, org.SourceRecordID)
	assert.Equal(t, organizationdomain.NotAvailable, org.Website)
}
