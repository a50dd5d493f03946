package validation

import (
	"encoding/json"
	"fmt"
	"os"

	"qc-monitor/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// LoadSchema loads a JSON schema from a file
func LoadSchema(schemaPath string) (*gojsonschema.Schema, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return schema, nil
}

// ValidateRules validates a rules config JSON document against a schema
func ValidateRules(rulesJSON []byte, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewBytesLoader(rulesJSON)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("rules config validation failed: %v", errors)
	}

	return nil
}

// ValidateAndParseRules validates and unmarshals a rules config JSON document
func ValidateAndParseRules(rulesJSON []byte, schemaPath string) (*models.RulesConfig, error) {
	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	if err := ValidateRules(rulesJSON, schema); err != nil {
		return nil, err
	}

	var cfg models.RulesConfig
	if err := json.Unmarshal(rulesJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules config: %w", err)
	}

	return &cfg, nil
}

// LoadRulesFile reads, validates and parses a rules config file. Invalid
// configuration is a startup failure, before any record is processed.
func LoadRulesFile(rulesPath, schemaPath string) ([]models.Rule, error) {
	rulesJSON, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules config: %w", err)
	}

	cfg, err := ValidateAndParseRules(rulesJSON, schemaPath)
	if err != nil {
		return nil, err
	}

	return cfg.Rules, nil
}

// LoadVendorsFile reads, validates and parses a vendors config file.
// Structural problems surface here; the vendor service additionally
// compiles every regex at construction.
func LoadVendorsFile(vendorsPath, schemaPath string) (*models.VendorsConfig, error) {
	vendorsJSON, err := os.ReadFile(vendorsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendors config: %w", err)
	}

	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(vendorsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to validate: %w", err)
	}
	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return nil, fmt.Errorf("vendors config validation failed: %v", errors)
	}

	var cfg models.VendorsConfig
	if err := json.Unmarshal(vendorsJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse vendors config: %w", err)
	}
	return &cfg, nil
}
