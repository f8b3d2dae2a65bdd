// Package ingest orchestrates an aggregation run: fetch from both
// registries, geocode, normalize, merge, and persist.
package ingest

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/export"
	"github.com/oneeighty/connect/internal/geocode"
	"github.com/oneeighty/connect/internal/observability/logger"
	"github.com/oneeighty/connect/internal/observability/metrics"
	"github.com/oneeighty/connect/internal/observability/obscontext"
	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/registry/charitybase"
	"github.com/oneeighty/connect/internal/registry/companieshouse"
	"github.com/oneeighty/connect/internal/report"
	"github.com/oneeighty/connect/internal/rules"
)

// RunResult summarizes one aggregation run.
type RunResult struct {
	RunID            string                                   `json:"run_id"`
	StartedAt        time.Time                                `json:"started_at"`
	Duration         time.Duration                            `json:"duration"`
	CharitiesFetched int                                      `json:"charities_fetched"`
	CompaniesFetched int                                      `json:"companies_fetched"`
	Merged           int                                      `json:"merged"`
	Persisted        int                                      `json:"persisted"`
	Localities       map[string]companieshouse.LocalityStats  `json:"localities"`
	ExportPath       string                                   `json:"export_path,omitempty"`
	ReportPath       string                                   `json:"report_path,omitempty"`
}

// Pipeline wires the registry clients, the geocoder, and the
// organization service into a single runnable aggregation.
type Pipeline struct {
	log       *zap.Logger
	rules     *rules.Holder
	charities *charitybase.Client
	companies *companieshouse.Client
	geocoder  *geocode.Client
	orgs      organizationdomain.Service
	metrics   *metrics.Metrics
	clk       clock.Clock
	exporter  *export.Writer
	reporter  *report.Generator
	notifier  *Notifier
}

func New(
	log *zap.Logger,
	holder *rules.Holder,
	charities *charitybase.Client,
	companies *companieshouse.Client,
	geocoder *geocode.Client,
	orgs organizationdomain.Service,
	m *metrics.Metrics,
	clk clock.Clock,
	exporter *export.Writer,
	reporter *report.Generator,
	notifier *Notifier,
) *Pipeline {
	return &Pipeline{
		log:       log,
		rules:     holder,
		charities: charities,
		companies: companies,
		geocoder:  geocoder,
		orgs:      orgs,
		metrics:   m,
		clk:       clk,
		exporter:  exporter,
		reporter:  reporter,
		notifier:  notifier,
	}
}

// Run executes one full aggregation. Registry and geocoding failures
// degrade the result; only persistence failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	runID := ulid.Make().String()
	ctx = obscontext.WithRunID(ctx, runID)
	log := logger.WithContext(ctx, p.log)
	startedAt := p.clk.Now()

	r := p.rules.Get()
	log.Info("starting aggregation run",
		zap.String("region", r.RegionCode),
		zap.Int("localities", len(r.Localities)),
	)

	charities := p.charities.FetchCharities(ctx, r)
	p.metrics.RecordRegistryRecords(ctx, organizationdomain.SourceCharityBase, "region", len(charities))
	log.Info("fetched charities", zap.Int("count", len(charities)))

	companies, localityStats := p.companies.FetchCompanies(ctx, r)
	for _, stats := range localityStats {
		p.metrics.RecordRegistryRecords(ctx, organizationdomain.SourceCompaniesHouse, companieshouse.RuleAutoInclude, stats.AutoInclude)
		p.metrics.RecordRegistryRecords(ctx, organizationdomain.SourceCompaniesHouse, companieshouse.RuleCIC, stats.CICTypes)
		p.metrics.RecordRegistryRecords(ctx, organizationdomain.SourceCompaniesHouse, companieshouse.RuleSICFiltered, stats.SICFiltered)
	}
	log.Info("fetched companies", zap.Int("count", len(companies)))

	records := make([]organizationdomain.Organization, 0, len(charities)+len(companies))
	for _, charity := range charities {
		records = append(records, NormalizeCharity(charity))
	}
	for _, company := range companies {
		records = append(records, NormalizeCompany(company))
	}

	locations := p.geocoder.Lookup(ctx, collectPostcodes(records))
	for i := range records {
		location, ok := locations[records[i].Postcode]
		if !ok {
			continue
		}
		records[i].City = location.City
		records[i].Region = location.Region
	}

	merged := DedupeByName(records)
	log.Info("merged records",
		zap.Int("raw", len(records)),
		zap.Int("merged", len(merged)),
		zap.Int("dropped", len(records)-len(merged)),
	)

	persisted, err := p.orgs.Persist(ctx, merged)
	if err != nil {
		p.metrics.RecordAggregationRun(ctx, "error")
		metrics.Pipeline().ObserveRun("error", p.clk.Now().Sub(startedAt).Seconds())
		log.Error("aggregation run failed",
			zap.Int("persisted_before_failure", persisted),
			zap.Error(err),
		)
		return nil, err
	}
	p.metrics.RecordPersisted(ctx, "all", persisted)

	result := &RunResult{
		RunID:            runID,
		StartedAt:        startedAt,
		Duration:         p.clk.Now().Sub(startedAt),
		CharitiesFetched: len(charities),
		CompaniesFetched: len(companies),
		Merged:           len(merged),
		Persisted:        persisted,
		Localities:       localityStats,
	}

	p.writeArtifacts(log, result, merged)
	if p.notifier != nil {
		p.notifier.NotifyRunComplete(ctx, result)
	}

	p.metrics.RecordAggregationRun(ctx, "ok")
	metrics.Pipeline().ObserveRun("ok", result.Duration.Seconds())
	log.Info("aggregation run complete",
		zap.Int("charities", result.CharitiesFetched),
		zap.Int("companies", result.CompaniesFetched),
		zap.Int("merged", result.Merged),
		zap.Int("persisted", result.Persisted),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// writeArtifacts saves the CSV export and the PDF run report. Both are
// best effort; a full database is the source of truth.
func (p *Pipeline) writeArtifacts(log *zap.Logger, result *RunResult, merged []organizationdomain.Organization) {
	if p.exporter != nil {
		path, err := p.exporter.Write(result.RunID, merged)
		if err != nil {
			log.Warn("failed to write csv export", zap.Error(err))
		} else {
			result.ExportPath = path
		}
	}

	if p.reporter != nil {
		path, err := p.reporter.Write(report.Summary{
			RunID:            result.RunID,
			StartedAt:        result.StartedAt.Format(time.RFC3339),
			Duration:         result.Duration.String(),
			CharitiesFetched: result.CharitiesFetched,
			CompaniesFetched: result.CompaniesFetched,
			Merged:           result.Merged,
			Persisted:        result.Persisted,
			Localities:       result.Localities,
		})
		if err != nil {
			log.Warn("failed to write run report", zap.Error(err))
		} else {
			result.ReportPath = path
		}
	}
}

// collectPostcodes gathers the distinct postcodes worth geocoding,
// preserving first-seen order.
func collectPostcodes(records []organizationdomain.Organization) []string {
	seen := make(map[string]struct{}, len(records))
	postcodes := make([]string, 0, len(records))
	for _, record := range records {
		if record.Postcode == "" || record.Postcode == organizationdomain.NotAvailable {
			continue
		}
		if _, ok := seen[record.Postcode]; ok {
			continue
		}
		seen[record.Postcode] = struct{}{}
		postcodes = append(postcodes, record.Postcode)
	}
	return postcodes
}
