package models

// VendorPaths holds the archive roots substituted into vendor regex
// patterns as {source_root} and {target_root}.
type VendorPaths struct {
	SourceRoot string `json:"source_root"`
	TargetRoot string `json:"target_root"`
}

// ConsistencyCheck configures the source-vs-target archive comparison
// for one vendor. When enabled, the single file carrying FileExtension
// in each archive must be byte-identical between the two.
type ConsistencyCheck struct {
	Enabled       bool   `json:"enabled"`
	FileExtension string `json:"file_extension"`
}

// ArchiveConfig locates a vendor's delivery archives. The regexes match
// against slash-normalized full paths of .tar.gz files under the
// configured roots and may reference {source_root}, {target_root},
// {tool_column} and {tool_number}.
type ArchiveConfig struct {
	SourceArchiveRegex string           `json:"source_archive_regex"`
	TargetArchiveRegex string           `json:"target_archive_regex"`
	ConsistencyCheck   ConsistencyCheck `json:"consistency_check"`
}

// BypassRules exempts patterns from validation for advanced technology
// values: a required pattern whose suffix matches a bypass pattern is
// skipped when the record's technology exceeds the threshold.
type BypassRules struct {
	TechnologyThreshold int      `json:"technology_threshold"`
	BypassPatterns      []string `json:"bypass_patterns"`
}

// VendorConfig is the complete validation profile for one vendor.
// RequiredPatterns are regexes matched against member paths inside the
// target archive; {tool_number} is substituted per record.
type VendorConfig struct {
	ArchiveConfig    ArchiveConfig `json:"archive_config"`
	RequiredPatterns []string      `json:"required_patterns"`
	BypassRules      BypassRules   `json:"bypass_rules"`
}

// VendorsConfig is the shape of the vendors JSON file: shared archive
// roots plus one profile per vendor key (lowercase).
type VendorsConfig struct {
	Paths   VendorPaths             `json:"paths"`
	Vendors map[string]VendorConfig `json:"vendors"`
}
