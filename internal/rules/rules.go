// Package rules holds the aggregation inclusion policy: which localities
// are scanned, which company types are trusted outright, and which SIC
// codes mark a company as social-impact.
package rules

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Rules drives the company-registry inclusion policy.
type Rules struct {
	// RegionCode is the charity-registry geographic filter.
	RegionCode string `mapstructure:"regionCode"`
	// CharityLimit caps the single charity-registry page.
	CharityLimit int `mapstructure:"charityLimit"`

	Localities []string `mapstructure:"localities"`

	// AutoIncludeTypes are registry types trusted outright.
	AutoIncludeTypes []string `mapstructure:"autoIncludeTypes"`
	// CICTypes are types included when carrying the community-interest
	// subtype.
	CICTypes []string `mapstructure:"cicTypes"`
	// SICFilterTypes are ambiguous types that require a SIC-code match.
	SICFilterTypes []string `mapstructure:"sicFilterTypes"`

	SocialImpactSICCodes []string `mapstructure:"socialImpactSicCodes"`
}

// Default returns the built-in Yorkshire policy.
func Default() Rules {
	return Rules{
		RegionCode:   "E12000003",
		CharityLimit: 30,
		Localities: []string{
			"Sheffield", "Leeds", "Bradford", "Kingston upon Hull", "Wakefield",
			"York", "Doncaster", "Barnsley", "Rotherham", "Huddersfield",
			"Halifax", "Harrogate", "Scunthorpe", "Grimsby", "Beverley",
			"Pontefract", "Selby", "Goole", "Keighley", "Batley", "Dewsbury",
			"Bridlington", "Thorne", "Ilkley", "Ripon", "Yorkshire",
			"West Yorkshire", "South Yorkshire", "North Yorkshire", "East Riding of Yorkshire",
		},
		AutoIncludeTypes: []string{
			"charitable-incorporated-organisation",
			"scottish-charitable-incorporated-organisation",
			"further-education-or-sixth-form-college-corporation",
		},
		CICTypes: []string{
			"private-limited-guarant-nsc",
			"private-limited-guarant-nsc-limited-exemption",
			"plc", "ltd",
		},
		SICFilterTypes: []string{
			"royal-charter", "united-kingdom-societas",
		},
		SocialImpactSICCodes: []string{
			"8531", "8532", "88910", "88990", "94990", "8010", "8021", "8022", "8030", "8042",
			"85510", "85520", "85530", "85590", "85600", "86101", "86102", "86210", "86220", "86230",
			"86900", "87100", "87200", "87300", "87900", "90010", "90020", "90030", "90040", "91011",
			"91012", "91020", "91030", "91040", "93110", "93120", "93130", "93191", "93199", "93210",
			"93290", "36000", "37000", "38110", "38120", "38210", "38220", "38310", "38320", "39000",
			"9131", "9132",
		},
	}
}

// SICCodeSet returns the social-impact codes as a membership set.
func (r Rules) SICCodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.SocialImpactSICCodes))
	for _, code := range r.SocialImpactSICCodes {
		set[strings.TrimSpace(code)] = struct{}{}
	}
	return set
}

// Holder serves the current rules and hot-reloads them when the config
// file changes.
type Holder struct {
	current atomic.Value // holds Rules
}

// NewHolder loads aggregation.yml (optional path override) and watches it
// for changes. Missing config files fall back to the built-in defaults.
func NewHolder(path string) (*Holder, error) {
	v := viper.New()

	v.SetConfigName("aggregation")
	v.SetConfigType("yml")
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc/connect")
		v.AddConfigPath(".")
	}

	holder := &Holder{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
		holder.current.Store(Default())
		return holder, nil
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := unmarshal(v)
		if err != nil {
			zap.L().Warn("aggregation rules reload failed", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("aggregation rules reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticHolder wraps fixed rules, for tests and one-shot runs.
func NewStaticHolder(r Rules) *Holder {
	holder := &Holder{}
	holder.current.Store(withDefaults(r))
	return holder
}

// Get returns the currently active rules.
func (h *Holder) Get() Rules {
	return h.current.Load().(Rules)
}

func unmarshal(v *viper.Viper) (Rules, error) {
	var cfg Rules
	if err := v.UnmarshalKey("aggregation", &cfg); err != nil {
		return Rules{}, err
	}
	cfg = withDefaults(cfg)
	if err := validate(cfg); err != nil {
		return Rules{}, err
	}
	return cfg, nil
}

func withDefaults(cfg Rules) Rules {
	defaults := Default()
	if strings.TrimSpace(cfg.RegionCode) == "" {
		cfg.RegionCode = defaults.RegionCode
	}
	if cfg.CharityLimit <= 0 {
		cfg.CharityLimit = defaults.CharityLimit
	}
	if len(cfg.Localities) == 0 {
		cfg.Localities = defaults.Localities
	}
	if len(cfg.AutoIncludeTypes) == 0 {
		cfg.AutoIncludeTypes = defaults.AutoIncludeTypes
	}
	if len(cfg.CICTypes) == 0 {
		cfg.CICTypes = defaults.CICTypes
	}
	if len(cfg.SICFilterTypes) == 0 {
		cfg.SICFilterTypes = defaults.SICFilterTypes
	}
	if len(cfg.SocialImpactSICCodes) == 0 {
		cfg.SocialImpactSICCodes = defaults.SocialImpactSICCodes
	}
	return cfg
}

func validate(cfg Rules) error {
	if len(cfg.Localities) == 0 {
		return errors.New("aggregation.localities cannot be empty")
	}
	if len(cfg.SocialImpactSICCodes) == 0 {
		return errors.New("aggregation.socialImpactSicCodes cannot be empty")
	}
	return nil
}
