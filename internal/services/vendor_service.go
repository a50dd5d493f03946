package services

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"qc-monitor/internal/models"
)

// VendorService validates vendor delivery archives for a record:
// discover the source and target .tar.gz archives by regex, compare the
// configured consistency file between them, then require each vendor
// pattern to match a non-empty file inside the target archive. Like the
// checkpoint engine it reports reasons, never errors: a sweep is not
// aborted by one bad delivery.
type VendorService struct {
	paths   models.VendorPaths
	vendors map[string]models.VendorConfig
}

// NewVendorService validates the whole vendors configuration up front:
// every regex must compile with probe substitutions, so malformed
// profiles fail at startup, before any record is processed.
func NewVendorService(cfg models.VendorsConfig) (*VendorService, error) {
	if cfg.Paths.SourceRoot == "" || cfg.Paths.TargetRoot == "" {
		return nil, fmt.Errorf("vendor paths require source_root and target_root")
	}
	if len(cfg.Vendors) == 0 {
		return nil, fmt.Errorf("no vendors configured")
	}

	s := &VendorService{paths: cfg.Paths, vendors: make(map[string]models.VendorConfig, len(cfg.Vendors))}
	for key, vendor := range cfg.Vendors {
		if err := s.validateVendor(vendor); err != nil {
			return nil, fmt.Errorf("vendor %q: %w", key, err)
		}
		s.vendors[strings.ToLower(key)] = vendor
	}
	return s, nil
}

func (s *VendorService) validateVendor(vendor models.VendorConfig) error {
	probe := models.TaskRecord{ToolNumber: "T0000", ToolColumn: "Probe"}

	if _, err := s.compileArchiveRegex(vendor.ArchiveConfig.SourceArchiveRegex, probe); err != nil {
		return fmt.Errorf("source archive regex: %w", err)
	}
	if _, err := s.compileArchiveRegex(vendor.ArchiveConfig.TargetArchiveRegex, probe); err != nil {
		return fmt.Errorf("target archive regex: %w", err)
	}

	if len(vendor.RequiredPatterns) == 0 {
		return fmt.Errorf("required_patterns must not be empty")
	}
	for _, pattern := range vendor.RequiredPatterns {
		if _, err := compileMemberRegex(pattern, probe.ToolNumber); err != nil {
			return fmt.Errorf("required pattern %q: %w", pattern, err)
		}
	}

	if vendor.ArchiveConfig.ConsistencyCheck.Enabled && vendor.ArchiveConfig.ConsistencyCheck.FileExtension == "" {
		return fmt.Errorf("consistency check enabled without a file_extension")
	}
	return nil
}

// compileArchiveRegex substitutes the path placeholders and compiles
// the result. Roots are slash-normalized so the patterns match the
// normalized paths produced during discovery.
func (s *VendorService) compileArchiveRegex(pattern string, record models.TaskRecord) (*regexp.Regexp, error) {
	replacer := strings.NewReplacer(
		"{source_root}", regexp.QuoteMeta(filepath.ToSlash(s.paths.SourceRoot)),
		"{target_root}", regexp.QuoteMeta(filepath.ToSlash(s.paths.TargetRoot)),
		"{tool_column}", regexp.QuoteMeta(record.ToolColumn),
		"{tool_number}", regexp.QuoteMeta(record.ToolNumber),
	)
	expanded := replacer.Replace(pattern)
	if strings.Contains(expanded, "{") || strings.Contains(expanded, "}") {
		return nil, fmt.Errorf("unknown placeholder in %q", pattern)
	}
	return regexp.Compile(expanded)
}

func compileMemberRegex(pattern, toolNumber string) (*regexp.Regexp, error) {
	expanded := strings.ReplaceAll(pattern, "{tool_number}", regexp.QuoteMeta(toolNumber))
	if strings.Contains(expanded, "{") || strings.Contains(expanded, "}") {
		return nil, fmt.Errorf("unknown placeholder in %q", pattern)
	}
	return regexp.Compile(expanded)
}

// Validate runs the full delivery validation for one record and returns
// the failure reasons, empty when the delivery passes.
func (s *VendorService) Validate(record models.TaskRecord) []string {
	vendorKey := strings.ToLower(strings.TrimSpace(record.Vendor))
	if vendorKey == "" {
		return []string{"no vendor specified for archive validation"}
	}

	vendor, ok := s.vendors[vendorKey]
	if !ok {
		return []string{fmt.Sprintf("no vendor profile configured for %q", record.Vendor)}
	}

	sourceArchive, targetArchive, err := s.findArchives(vendor, record)
	if err != nil {
		return []string{fmt.Sprintf("archive discovery failed: %v", err)}
	}
	if sourceArchive == "" || targetArchive == "" {
		return []string{fmt.Sprintf("archives not found - source: %s, target: %s",
			orMissing(sourceArchive), orMissing(targetArchive))}
	}

	if check := vendor.ArchiveConfig.ConsistencyCheck; check.Enabled {
		if err := CompareArchivesByExtension(sourceArchive, targetArchive, check.FileExtension); err != nil {
			return []string{fmt.Sprintf("%s consistency check failed: %v", check.FileExtension, err)}
		}
	}

	return s.validatePatterns(vendor, record, targetArchive)
}

// findArchives locates the first .tar.gz under each root whose
// slash-normalized path matches the vendor's regex.
func (s *VendorService) findArchives(vendor models.VendorConfig, record models.TaskRecord) (string, string, error) {
	sourcePattern, err := s.compileArchiveRegex(vendor.ArchiveConfig.SourceArchiveRegex, record)
	if err != nil {
		return "", "", err
	}
	targetPattern, err := s.compileArchiveRegex(vendor.ArchiveConfig.TargetArchiveRegex, record)
	if err != nil {
		return "", "", err
	}

	return findArchive(s.paths.SourceRoot, sourcePattern), findArchive(s.paths.TargetRoot, targetPattern), nil
}

func findArchive(root string, pattern *regexp.Regexp) string {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree means no match there, never an abort
			return fs.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tar.gz") {
			return nil
		}
		if pattern.MatchString(filepath.ToSlash(path)) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// validatePatterns checks every required pattern against the target
// archive, honoring the technology bypass rules.
func (s *VendorService) validatePatterns(vendor models.VendorConfig, record models.TaskRecord, targetArchive string) []string {
	reader, err := NewArchiveReader(targetArchive)
	if err != nil {
		return []string{fmt.Sprintf("target archive unreadable: %v", err)}
	}

	var reasons []string
	checked := 0
	for _, pattern := range vendor.RequiredPatterns {
		if bypassed(pattern, record.Technology, vendor.BypassRules) {
			continue
		}
		checked++

		memberPattern, err := compileMemberRegex(pattern, record.ToolNumber)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("required pattern %q invalid: %v", pattern, err))
			continue
		}

		matches, err := reader.SearchPattern(memberPattern)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("target archive unreadable: %v", err))
			break
		}
		if !anyNonEmpty(matches) {
			reasons = append(reasons, fmt.Sprintf("no non-empty file matching %q in target archive", pattern))
		}
	}

	if len(reasons) > 0 && checked > 0 {
		passed := checked - len(reasons)
		if passed < 0 {
			passed = 0
		}
		reasons = append(reasons, fmt.Sprintf("pattern validation: %d/%d passed (pass rate %.1f%%)",
			passed, checked, float64(passed)/float64(checked)*100))
	}
	return reasons
}

// bypassed reports whether a pattern is exempt for this technology
// value: the pattern's suffix matches a bypass pattern and technology
// exceeds the threshold.
func bypassed(pattern string, technology int, rules models.BypassRules) bool {
	if technology <= rules.TechnologyThreshold {
		return false
	}
	for _, bypass := range rules.BypassPatterns {
		if strings.HasSuffix(pattern, bypass) {
			return true
		}
	}
	return false
}

func anyNonEmpty(entries []ArchiveEntry) bool {
	for _, entry := range entries {
		if entry.Size > 0 {
			return true
		}
	}
	return false
}

func orMissing(path string) string {
	if path == "" {
		return "not found"
	}
	return path
}
