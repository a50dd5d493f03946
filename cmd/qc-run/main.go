package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"qc-monitor/internal/config"
	"qc-monitor/internal/models"
	"qc-monitor/internal/services"
	"qc-monitor/internal/utils"
	"qc-monitor/internal/validation"
)

func main() {
	todayFlag := flag.String("today", "", "Evaluation date (YYYY-MM-DD), defaults to the current date")
	notifyFlag := flag.Bool("notify", false, "Send failure notification emails after the sweep")
	schemaFlag := flag.String("rules-schema", "schemas/rules_schema.json", "Path to the rules config JSON schema")
	vendorsSchemaFlag := flag.String("vendors-schema", "schemas/vendors_schema.json", "Path to the vendors config JSON schema")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	today := time.Now()
	if *todayFlag != "" {
		today, err = utils.ParseDate(*todayFlag)
		if err != nil {
			log.Fatalf("Invalid -today value: %v", err)
		}
	}

	// Rule configuration errors are fatal before any record is processed
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
	} else if *notifyFlag {
		log.Printf("WARNING: SendGrid API key not configured, -notify will only log failures")
	}

	var summaryService *services.SummaryService
	if cfg.OpenAI.APIKey != "" {
		summaryService = services.NewSummaryService(cfg.OpenAI)
	}

	reportService := services.NewReportService(
		services.NewExcelService(),
		transformService,
		checkpointService,
		emailService,
		pdfService,
		summaryService,
	)

	var report *models.FailureReport
	if *notifyFlag {
		report, err = reportService.GenerateAndNotify(context.Background(), inputPath, today)
	} else {
		report, err = reportService.GenerateReport(inputPath, today)
	}
	if err != nil {
		log.Fatalf("QC sweep failed: %v", err)
	}

	out, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	fmt.Println(string(out))
}
