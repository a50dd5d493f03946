package validation

import (
	"os"
	"path/filepath"
	"testing"

	"qc-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesSchemaPath = "../../schemas/rules_schema.json"

const validRulesJSON = `{
  "rules": [
    {
      "name": "Package Readiness",
      "trigger": {"type": "days_after_project_start", "days": 3},
      "pathTemplate": "{target_root}/{tool_column}/*{tool_number}*"
    },
    {
      "name": "Final Report",
      "trigger": {"type": "days_before_schedule", "days": 7},
      "pathTemplate": "{target_root}/{tool_column}/Final_Report_*{tool_number}*.pdf"
    }
  ]
}`

func TestValidateAndParseRules(t *testing.T) {
	cfg, err := ValidateAndParseRules([]byte(validRulesJSON), rulesSchemaPath)

	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "Package Readiness", cfg.Rules[0].Name)
	assert.Equal(t, models.TriggerDaysAfterProjectStart, cfg.Rules[0].Trigger.Type)
	assert.Equal(t, 3, cfg.Rules[0].Trigger.Days)
	assert.Equal(t, "Final Report", cfg.Rules[1].Name)
	assert.Equal(t, models.TriggerDaysBeforeSchedule, cfg.Rules[1].Trigger.Type)
}

func TestValidateRulesRejectsMissingName(t *testing.T) {
	doc := `{"rules": [{"trigger": {"type": "days_before_schedule", "days": 1}, "pathTemplate": "x"}]}`

	_, err := ValidateAndParseRules([]byte(doc), rulesSchemaPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateRulesRejectsUnknownTriggerType(t *testing.T) {
	doc := `{"rules": [{"name": "X", "trigger": {"type": "days_after_lunch", "days": 1}, "pathTemplate": "x"}]}`

	_, err := ValidateAndParseRules([]byte(doc), rulesSchemaPath)

	require.Error(t, err)
}

func TestValidateRulesRejectsNegativeDays(t *testing.T) {
	doc := `{"rules": [{"name": "X", "trigger": {"type": "days_before_schedule", "days": -1}, "pathTemplate": "x"}]}`

	_, err := ValidateAndParseRules([]byte(doc), rulesSchemaPath)

	require.Error(t, err)
}

func TestValidateRulesRejectsEmptyRuleList(t *testing.T) {
	_, err := ValidateAndParseRules([]byte(`{"rules": []}`), rulesSchemaPath)

	require.Error(t, err)
}

func TestValidateRulesRejectsMalformedJSON(t *testing.T) {
	_, err := ValidateAndParseRules([]byte(`{"rules": [`), rulesSchemaPath)

	require.Error(t, err)
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(validRulesJSON), 0o644))

	rules, err := LoadRulesFile(path, rulesSchemaPath)

	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestLoadRulesFileMissing(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "nope.json"), rulesSchemaPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rules config")
}

func TestLoadBundledRulesConfig(t *testing.T) {
	rules, err := LoadRulesFile("../../config/rules.json", rulesSchemaPath)

	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "Package Readiness", rules[0].Name)
	assert.Equal(t, "Final Report", rules[1].Name)
	assert.Equal(t, "Vendor Delivery", rules[2].Name)
	assert.Equal(t, models.CheckVendorArchive, rules[2].EffectiveCheck())
}

const vendorsSchemaPath = "../../schemas/vendors_schema.json"

const validVendorsJSON = `{
  "paths": {"source_root": "/src", "target_root": "/dst"},
  "vendors": {
    "vendor_a": {
      "archive_config": {
        "source_archive_regex": "{source_root}/source_{tool_number}\\.tar\\.gz$",
        "target_archive_regex": "{target_root}/target_{tool_number}\\.tar\\.gz$",
        "consistency_check": {"enabled": true, "file_extension": "rctl"}
      },
      "required_patterns": ["Report_{tool_number}_.*\\.xlsx$"],
      "bypass_rules": {"technology_threshold": 5, "bypass_patterns": ["\\.pdf$"]}
    }
  }
}`

func TestLoadVendorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.json")
	require.NoError(t, os.WriteFile(path, []byte(validVendorsJSON), 0o644))

	cfg, err := LoadVendorsFile(path, vendorsSchemaPath)

	require.NoError(t, err)
	assert.Equal(t, "/src", cfg.Paths.SourceRoot)
	assert.Equal(t, "/dst", cfg.Paths.TargetRoot)
	require.Contains(t, cfg.Vendors, "vendor_a")
	vendor := cfg.Vendors["vendor_a"]
	assert.True(t, vendor.ArchiveConfig.ConsistencyCheck.Enabled)
	assert.Equal(t, "rctl", vendor.ArchiveConfig.ConsistencyCheck.FileExtension)
	assert.Equal(t, 5, vendor.BypassRules.TechnologyThreshold)
}

func TestLoadVendorsFileRejectsMissingPaths(t *testing.T) {
	doc := `{"vendors": {"vendor_a": {"archive_config": {"source_archive_regex": "a", "target_archive_regex": "b", "consistency_check": {"enabled": false}}, "required_patterns": ["x"]}}}`
	path := filepath.Join(t.TempDir(), "vendors.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadVendorsFile(path, vendorsSchemaPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadVendorsFileRejectsEmptyVendors(t *testing.T) {
	doc := `{"paths": {"source_root": "/src", "target_root": "/dst"}, "vendors": {}}`
	path := filepath.Join(t.TempDir(), "vendors.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadVendorsFile(path, vendorsSchemaPath)

	require.Error(t, err)
}

func TestLoadVendorsFileMissing(t *testing.T) {
	_, err := LoadVendorsFile(filepath.Join(t.TempDir(), "nope.json"), vendorsSchemaPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read vendors config")
}

func TestLoadBundledVendorsConfig(t *testing.T) {
	cfg, err := LoadVendorsFile("../../config/vendors.json", vendorsSchemaPath)

	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Vendors)
}
