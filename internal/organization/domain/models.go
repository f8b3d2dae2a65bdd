// Package domain contains persistence models for aggregated organization
// records and their originating registries.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Registry source names as persisted in the sources table.
const (
	SourceCharityBase    = "CharityBase"
	SourceCompaniesHouse = "Companies House"
)

// NotAvailable is the sentinel stored for any field a registry did not
// supply. Downstream consumers can treat every field as an always-present
// string.
const NotAvailable = "N/A"

// Source identifies the registry a record was aggregated from.
type Source struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:ux_sources_name" json:"name"`
	Slug      string    `gorm:"type:text;not null;default:''" json:"slug"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Source) TableName() string { return "sources" }

// Organization is the canonical record shape shared by every registry.
type Organization struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	SourceRecordID string       `gorm:"column:source_record_id;type:text;not null;default:'N/A'" json:"source_record_id"`
	Name           string       `gorm:"type:text;not null;index:ix_organizations_name" json:"name"`
	Status         string       `gorm:"type:text;not null;default:'N/A'" json:"status"`
	CompanyType    string       `gorm:"type:text;not null;default:'N/A'" json:"company_type"`
	Address        string       `gorm:"type:text;not null;default:'N/A'" json:"address"`
	Email          string       `gorm:"type:text;not null;default:'N/A'" json:"email"`
	Postcode       string       `gorm:"type:text;not null;default:'N/A'" json:"postcode"`
	City           string       `gorm:"type:text;not null;default:'N/A'" json:"city"`
	Region         string       `gorm:"type:text;not null;default:'N/A'" json:"region"`
	Website        string       `gorm:"type:text;not null;default:'N/A'" json:"website"`
	Activities     string       `gorm:"type:text;not null;default:'N/A'" json:"activities"`
	SourceID       int64        `gorm:"not null;index:ix_organizations_source_id" json:"source_id"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// SourceName is the registry the record came from; resolved to
	// SourceID at persistence time.
	SourceName string `gorm:"-" json:"source"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }
