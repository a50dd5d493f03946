package main

import (
	"flag"
	"log"

	"qc-monitor/internal/api"
	"qc-monitor/internal/config"
	"qc-monitor/internal/services"
	"qc-monitor/internal/validation"
)

func main() {
	schemaFlag := flag.String("rules-schema", "schemas/rules_schema.json", "Path to the rules config JSON schema")
	vendorsSchemaFlag := flag.String("vendors-schema", "schemas/vendors_schema.json", "Path to the vendors config JSON schema")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Rule configuration errors are fatal at startup
	rules := services.DefaultRules()
	if cfg.Checker.RulesPath != "" {
		rules, err = validation.LoadRulesFile(cfg.Checker.RulesPath, *schemaFlag)
		if err != nil {
			log.Fatalf("Invalid rules config: %v", err)
		}
	}

	var vendorService *services.VendorService
	if cfg.Checker.VendorsPath != "" {
		vendorsCfg, err := validation.LoadVendorsFile(cfg.Checker.VendorsPath, *vendorsSchemaFlag)
		if err != nil {
			log.Fatalf("Invalid vendors config: %v", err)
		}
		vendorService, err = services.NewVendorService(*vendorsCfg)
		if err != nil {
			log.Fatalf("Invalid vendors config: %v", err)
		}
	}

	checkpointService, err := services.NewCheckpointService(rules, cfg.Checker.TargetRoot, vendorService)
	if err != nil {
		log.Fatalf("Invalid checkpoint configuration: %v", err)
	}

	// Initialize the date services
	holidayService := services.NewHolidayService(cfg.Holiday)
	businessDayService := services.NewBusinessDayService(holidayService, cfg.Holiday.Region)
	transformService := services.NewTransformService(businessDayService, cfg.Checker.WindowBusinessDays, cfg.Checker.LeadBusinessDays)

	// Initialize the optional notification services
	var emailService *services.EmailService
	var pdfService *services.PDFService
	if cfg.Email.APIKey != "" {
		emailService = services.NewEmailService(cfg.Email)
		pdfService = services.NewPDFService()
	} else {
		log.Printf("SendGrid API key not configured, failure notifications disabled")
	}

	var summaryService *services.SummaryService
	if cfg.OpenAI.APIKey != "" {
		summaryService = services.NewSummaryService(cfg.OpenAI)
	} else {
		log.Printf("OpenAI API key not configured, AI summaries disabled")
	}

	reportService := services.NewReportService(
		services.NewExcelService(),
		transformService,
		checkpointService,
		emailService,
		pdfService,
		summaryService,
	)
	taskService := services.NewTaskService()

	// Initialize handlers and routes
	handlers := api.NewHandlers(reportService, taskService)
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
