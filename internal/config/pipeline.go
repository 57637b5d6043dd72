package config

import (
	"fmt"

	"logview/internal/crossfile"
	"logview/internal/cycletime"
	"logview/internal/logparse"
	"logview/internal/uph"
)

// PipelineConfig holds the data-processing settings.
type PipelineConfig struct {
	CycleCode         string        `yaml:"cycle_code" envconfig:"CYCLE_CODE"`
	SpeedCode         string        `yaml:"speed_code" envconfig:"SPEED_CODE"`
	SpeedSlot         int           `yaml:"speed_slot" envconfig:"SPEED_SLOT"`
	SpeedDivisor      float64       `yaml:"speed_divisor" envconfig:"SPEED_DIVISOR"`
	FaultCodes        []string      `yaml:"fault_codes" envconfig:"FAULT_CODES"`
	FramePrefixes     []string      `yaml:"frame_prefixes" envconfig:"FRAME_PREFIXES"`
	FrameSuffixLen    int           `yaml:"frame_suffix_len" envconfig:"FRAME_SUFFIX_LEN"`
	DateLayouts       []string      `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	MaxElapsedSeconds float64       `yaml:"max_elapsed_seconds" envconfig:"MAX_ELAPSED_SECONDS"`
	Outlier           OutlierConfig `yaml:"outlier" envconfig:"OUTLIER"`
	MinSamples        int           `yaml:"min_samples" envconfig:"MIN_SAMPLES"`
	GroupIQRFactor    float64       `yaml:"group_iqr_factor" envconfig:"GROUP_IQR_FACTOR"`
	MinGroupValues    int           `yaml:"min_group_values" envconfig:"MIN_GROUP_VALUES"`
	Workers           int           `yaml:"workers" envconfig:"WORKERS"`
	UPH               UPHConfig     `yaml:"uph" envconfig:"UPH"`

	LeadFrameOverrides []LeadFrameOverride `yaml:"lead_frame_overrides" ignored:"true"`
	ProcessRules       []ProcessRule       `yaml:"process_rules" ignored:"true"`
}

// OutlierConfig holds the per-frame outlier thresholds.
type OutlierConfig struct {
	IQRFactor           float64 `yaml:"iqr_factor" envconfig:"IQR_FACTOR"`
	ZThreshold          float64 `yaml:"z_threshold" envconfig:"Z_THRESHOLD"`
	MinDeviationSeconds float64 `yaml:"min_deviation_seconds" envconfig:"MIN_DEVIATION_SECONDS"`
}

// UPHConfig holds the UPH cleaning settings.
type UPHConfig struct {
	MinRows       int     `yaml:"min_rows" envconfig:"MIN_ROWS"`
	MaxIterations int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS"`
	ZThreshold    float64 `yaml:"z_threshold" envconfig:"Z_THRESHOLD"`
	IQRFactor     float64 `yaml:"iqr_factor" envconfig:"IQR_FACTOR"`
}

// LeadFrameOverride is one row of the lead-frame correction table.
type LeadFrameOverride struct {
	PackageGroup string  `yaml:"package_group"`
	Speed        float64 `yaml:"speed"`
	LeadFrame    string  `yaml:"lead_frame"`
}

// ProcessRule is one row of the process naming table.
type ProcessRule struct {
	PackageGroup string  `yaml:"package_group"`
	Speed        float64 `yaml:"speed"`
	Process      string  `yaml:"process"`
}

// DefaultPipeline returns the production pipeline settings.
func DefaultPipeline() PipelineConfig {
	parser := logparse.DefaultParserConfig()
	cycles := logparse.DefaultCycleConfig()
	outliers := cycletime.DefaultOutlierConfig()
	grouped := crossfile.DefaultGroupOptions()
	cleaner := uph.DefaultConfig()

	p := PipelineConfig{
		CycleCode:         cycles.CycleCode,
		SpeedCode:         cycles.SpeedCode,
		SpeedSlot:         cycles.SpeedSlot,
		SpeedDivisor:      cycles.SpeedDivisor,
		FaultCodes:        append([]string(nil), logparse.DefaultFaultCodes...),
		FramePrefixes:     append([]string(nil), parser.FramePrefixes...),
		FrameSuffixLen:    parser.FrameSuffixLen,
		DateLayouts:       append([]string(nil), parser.DateLayouts...),
		MaxElapsedSeconds: cycletime.DefaultMaxElapsedSeconds,
		Outlier: OutlierConfig{
			IQRFactor:           outliers.IQRFactor,
			ZThreshold:          outliers.ZThreshold,
			MinDeviationSeconds: outliers.MinDeviationSeconds,
		},
		MinSamples:     cycletime.DefaultMinSamples,
		GroupIQRFactor: grouped.GroupIQRFactor,
		MinGroupValues: grouped.MinValues,
		Workers:        1,
		UPH: UPHConfig{
			MinRows:       cleaner.MinRows,
			MaxIterations: cleaner.MaxIterations,
			ZThreshold:    cleaner.ZThreshold,
			IQRFactor:     cleaner.IQRFactor,
		},
	}
	for _, o := range grouped.LeadFrameOverrides {
		p.LeadFrameOverrides = append(p.LeadFrameOverrides, LeadFrameOverride(o))
	}
	for _, r := range grouped.ProcessRules {
		p.ProcessRules = append(p.ProcessRules, ProcessRule(r))
	}
	return p
}

func (p *PipelineConfig) validate() error {
	if p.CycleCode == "" || p.SpeedCode == "" {
		return fmt.Errorf("pipeline cycle and speed codes are required")
	}
	if p.SpeedSlot < 1 {
		return fmt.Errorf("pipeline speed slot must be at least 1, got %d", p.SpeedSlot)
	}
	if p.SpeedDivisor == 0 {
		return fmt.Errorf("pipeline speed divisor must not be zero")
	}
	if len(p.FramePrefixes) == 0 || p.FrameSuffixLen <= 0 {
		return fmt.Errorf("pipeline frame prefixes and suffix length are required")
	}
	if p.MaxElapsedSeconds <= 0 {
		return fmt.Errorf("pipeline max elapsed seconds must be positive")
	}
	if p.MinSamples < 1 {
		return fmt.Errorf("pipeline min samples must be at least 1")
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	return nil
}

// AnalyzerOptions converts the settings for cycletime.NewAnalyzer.
func (p PipelineConfig) AnalyzerOptions() cycletime.Options {
	opts := cycletime.DefaultOptions()
	opts.Parser.FramePrefixes = p.FramePrefixes
	opts.Parser.FrameSuffixLen = p.FrameSuffixLen
	if len(p.DateLayouts) > 0 {
		opts.Parser.DateLayouts = p.DateLayouts
	}
	opts.Cycles = logparse.CycleConfig{
		CycleCode:    p.CycleCode,
		SpeedCode:    p.SpeedCode,
		SpeedSlot:    p.SpeedSlot,
		SpeedDivisor: p.SpeedDivisor,
	}
	opts.FaultCodes = p.FaultCodes
	opts.MaxElapsedSeconds = p.MaxElapsedSeconds
	opts.Outliers = cycletime.OutlierConfig{
		IQRFactor:           p.Outlier.IQRFactor,
		ZThreshold:          p.Outlier.ZThreshold,
		MinDeviationSeconds: p.Outlier.MinDeviationSeconds,
	}
	opts.MinSamples = p.MinSamples
	return opts
}

// GroupOptions converts the settings for crossfile.NewGroupedAverager.
func (p PipelineConfig) GroupOptions() crossfile.GroupOptions {
	opts := crossfile.DefaultGroupOptions()
	opts.GroupIQRFactor = p.GroupIQRFactor
	opts.MinValues = p.MinGroupValues
	opts.LeadFrameOverrides = nil
	for _, o := range p.LeadFrameOverrides {
		opts.LeadFrameOverrides = append(opts.LeadFrameOverrides, crossfile.LeadFrameOverride(o))
	}
	opts.ProcessRules = nil
	for _, r := range p.ProcessRules {
		opts.ProcessRules = append(opts.ProcessRules, crossfile.ProcessRule(r))
	}
	return opts
}

// UPHCleaner converts the settings for uph.NewCleaner.
func (p PipelineConfig) UPHCleaner() uph.Config {
	return uph.Config{
		MinRows:       p.UPH.MinRows,
		MaxIterations: p.UPH.MaxIterations,
		ZThreshold:    p.UPH.ZThreshold,
		IQRFactor:     p.UPH.IQRFactor,
	}
}
