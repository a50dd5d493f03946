package services

import (
	"path/filepath"
	"testing"

	"qc-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorConfig(sourceRoot, targetRoot string) models.VendorsConfig {
	return models.VendorsConfig{
		Paths: models.VendorPaths{SourceRoot: sourceRoot, TargetRoot: targetRoot},
		Vendors: map[string]models.VendorConfig{
			"Vendor_A": {
				ArchiveConfig: models.ArchiveConfig{
					SourceArchiveRegex: `{source_root}/source_{tool_number}_.*\.tar\.gz$`,
					TargetArchiveRegex: `{target_root}/{tool_column}/target_{tool_number}_.*\.tar\.gz$`,
					ConsistencyCheck:   models.ConsistencyCheck{Enabled: true, FileExtension: "rctl"},
				},
				RequiredPatterns: []string{`Report_{tool_number}_.*\.xlsx$`, `Summary_{tool_number}_.*\.pdf$`},
				BypassRules: models.BypassRules{
					TechnologyThreshold: 5,
					BypassPatterns:      []string{`\.pdf$`},
				},
			},
		},
	}
}

func vendorRecord(tool string, technology int) models.TaskRecord {
	return models.TaskRecord{
		ToolNumber: tool,
		ToolColumn: "ProjectA",
		Vendor:     "vendor_a",
		Technology: technology,
	}
}

// deliveredArchives lays down a matching source and target archive pair
// and returns the configured service.
func deliveredArchives(t *testing.T, sourceMembers, targetMembers map[string]string) *VendorService {
	t.Helper()
	dir := t.TempDir()
	sourceRoot := filepath.Join(dir, "src")
	targetRoot := filepath.Join(dir, "dst")
	writeArchive(t, filepath.Join(sourceRoot, "source_T123_v1.tar.gz"), sourceMembers)
	writeArchive(t, filepath.Join(targetRoot, "ProjectA", "target_T123_v1.tar.gz"), targetMembers)

	svc, err := NewVendorService(vendorConfig(sourceRoot, targetRoot))
	require.NoError(t, err)
	return svc
}

func TestNewVendorServiceRejectsEmptyRoots(t *testing.T) {
	cfg := vendorConfig("", "/dst")
	_, err := NewVendorService(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_root and target_root")
}

func TestNewVendorServiceRejectsNoVendors(t *testing.T) {
	cfg := vendorConfig("/src", "/dst")
	cfg.Vendors = nil

	_, err := NewVendorService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vendors configured")
}

func TestNewVendorServiceRejectsBadArchiveRegex(t *testing.T) {
	cfg := vendorConfig("/src", "/dst")
	vendor := cfg.Vendors["Vendor_A"]
	vendor.ArchiveConfig.SourceArchiveRegex = `{source_root}/[broken`
	cfg.Vendors["Vendor_A"] = vendor

	_, err := NewVendorService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `vendor "Vendor_A"`)
	assert.Contains(t, err.Error(), "source archive regex")
}

func TestNewVendorServiceRejectsUnknownPlaceholder(t *testing.T) {
	cfg := vendorConfig("/src", "/dst")
	vendor := cfg.Vendors["Vendor_A"]
	vendor.RequiredPatterns = []string{`Report_{serial}_.*\.xlsx$`}
	cfg.Vendors["Vendor_A"] = vendor

	_, err := NewVendorService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown placeholder")
}

func TestNewVendorServiceRejectsEmptyPatterns(t *testing.T) {
	cfg := vendorConfig("/src", "/dst")
	vendor := cfg.Vendors["Vendor_A"]
	vendor.RequiredPatterns = nil
	cfg.Vendors["Vendor_A"] = vendor

	_, err := NewVendorService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required_patterns")
}

func TestNewVendorServiceRejectsConsistencyWithoutExtension(t *testing.T) {
	cfg := vendorConfig("/src", "/dst")
	vendor := cfg.Vendors["Vendor_A"]
	vendor.ArchiveConfig.ConsistencyCheck = models.ConsistencyCheck{Enabled: true}
	cfg.Vendors["Vendor_A"] = vendor

	_, err := NewVendorService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_extension")
}

func TestValidateDeliveryPasses(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe v3"},
		map[string]string{
			"control.rctl":               "recipe v3",
			"docs/Report_T123_june.xlsx": "report",
			"docs/Summary_T123_june.pdf": "summary",
		})

	reasons := svc.Validate(vendorRecord("T123", 3))

	assert.Empty(t, reasons)
}

func TestValidateVendorKeyIsCaseInsensitive(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe"},
		map[string]string{
			"control.rctl":               "recipe",
			"docs/Report_T123_june.xlsx": "report",
			"docs/Summary_T123_june.pdf": "summary",
		})

	record := vendorRecord("T123", 3)
	record.Vendor = " VENDOR_A "

	assert.Empty(t, svc.Validate(record))
}

func TestValidateNoVendorOnRecord(t *testing.T) {
	svc := deliveredArchives(t, map[string]string{"control.rctl": "x"}, map[string]string{"control.rctl": "x"})

	record := vendorRecord("T123", 3)
	record.Vendor = ""

	reasons := svc.Validate(record)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "no vendor specified")
}

func TestValidateUnknownVendor(t *testing.T) {
	svc := deliveredArchives(t, map[string]string{"control.rctl": "x"}, map[string]string{"control.rctl": "x"})

	record := vendorRecord("T123", 3)
	record.Vendor = "vendor_z"

	reasons := svc.Validate(record)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], `no vendor profile configured for "vendor_z"`)
}

func TestValidateArchivesNotFound(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewVendorService(vendorConfig(filepath.Join(dir, "src"), filepath.Join(dir, "dst")))
	require.NoError(t, err)

	reasons := svc.Validate(vendorRecord("T123", 3))

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "archives not found")
	assert.Contains(t, reasons[0], "source: not found")
}

func TestValidateArchiveForWrongToolNotMatched(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "x"},
		map[string]string{"control.rctl": "x"})

	// Archives on disk belong to T123; this record wants T999.
	reasons := svc.Validate(vendorRecord("T999", 3))

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "archives not found")
}

func TestValidateConsistencyFailure(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe v3"},
		map[string]string{
			"control.rctl":               "recipe v4!",
			"docs/Report_T123_june.xlsx": "report",
			"docs/Summary_T123_june.pdf": "summary",
		})

	reasons := svc.Validate(vendorRecord("T123", 3))

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "rctl consistency check failed")
	assert.Contains(t, reasons[0], "files differ")
}

func TestValidateMissingRequiredPattern(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe"},
		map[string]string{
			"control.rctl":               "recipe",
			"docs/Summary_T123_june.pdf": "summary",
		})

	reasons := svc.Validate(vendorRecord("T123", 3))

	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[0], `no non-empty file matching "Report_{tool_number}_.*\.xlsx$"`)
	assert.Contains(t, reasons[1], "pattern validation: 1/2 passed (pass rate 50.0%)")
}

func TestValidateEmptyMemberDoesNotSatisfyPattern(t *testing.T) {
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe"},
		map[string]string{
			"control.rctl":               "recipe",
			"docs/Report_T123_june.xlsx": "",
			"docs/Summary_T123_june.pdf": "summary",
		})

	reasons := svc.Validate(vendorRecord("T123", 3))

	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons[0], "no non-empty file matching")
}

func TestValidateTechnologyBypassSkipsPattern(t *testing.T) {
	// Summary pdf is missing, but technology 7 > threshold 5 bypasses
	// every pattern ending in .pdf$.
	svc := deliveredArchives(t,
		map[string]string{"control.rctl": "recipe"},
		map[string]string{
			"control.rctl":               "recipe",
			"docs/Report_T123_june.xlsx": "report",
		})

	assert.Empty(t, svc.Validate(vendorRecord("T123", 7)))

	// At or below the threshold the pattern still applies.
	reasons := svc.Validate(vendorRecord("T123", 5))
	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons[0], `Summary_{tool_number}_.*\.pdf$`)
}
