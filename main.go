package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	apihttp "dormitory-cloud/internal/api/http"
	"dormitory-cloud/internal/audit"
	"dormitory-cloud/internal/auth"
	billingapp "dormitory-cloud/internal/billing/application"
	billing "dormitory-cloud/internal/billing/domain"
	billingrepo "dormitory-cloud/internal/billing/infrastructure/postgres"
	billinghttp "dormitory-cloud/internal/billing/interfaces/http"
	maintenanceapp "dormitory-cloud/internal/maintenance/application"
	maintenancerepo "dormitory-cloud/internal/maintenance/infrastructure/postgres"
	maintenancehttp "dormitory-cloud/internal/maintenance/interfaces/http"
	masterdatarepo "dormitory-cloud/internal/masterdata/infrastructure/postgres"
	masterdatahttp "dormitory-cloud/internal/masterdata/interfaces/http"
	meteringapp "dormitory-cloud/internal/metering/application"
	meteringrepo "dormitory-cloud/internal/metering/infrastructure/postgres"
	meteringhttp "dormitory-cloud/internal/metering/interfaces/http"
	"dormitory-cloud/internal/observability/metrics"
	tenancyapp "dormitory-cloud/internal/tenancy/application"
	tenancyrepo "dormitory-cloud/internal/tenancy/infrastructure/postgres"
	tenancyhttp "dormitory-cloud/internal/tenancy/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()
	auditRepo := audit.NewRepository(db)

	rates, err := billing.LoadRateTable(cfg.RatesFile)
	if err != nil {
		logger.Fatalf("rate table error: %v", err)
	}

	branchRepo := masterdatarepo.NewBranchRepository(db)
	buildingRepo := masterdatarepo.NewBuildingRepository(db)
	roomRepo := masterdatarepo.NewRoomRepository(db)
	equipmentRepo := masterdatarepo.NewEquipmentRepository(db)
	userRepo := tenancyrepo.NewUserRepository(db)
	contractRepo := tenancyrepo.NewContractRepository(db)
	readingRepo := meteringrepo.NewReadingRepository(db)
	invoiceRepo := billingrepo.NewInvoiceRepository(db)
	ticketRepo := maintenancerepo.NewTicketRepository(db)

	authService, err := tenancyapp.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.JWTTTL)
	if err != nil {
		logger.Fatalf("auth service error: %v", err)
	}
	contractService, err := tenancyapp.NewContractService(contractRepo, roomRepo, userRepo, nil)
	if err != nil {
		logger.Fatalf("contract service error: %v", err)
	}
	readingService, err := meteringapp.NewReadingService(readingRepo, nil)
	if err != nil {
		logger.Fatalf("reading service error: %v", err)
	}
	invoiceService, err := billingapp.NewInvoiceService(invoiceRepo)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}
	monthlyRun, err := billingapp.NewMonthlyRunService(
		billingrepo.NewContractReadModel(db),
		billingrepo.NewReadingReadModel(db),
		invoiceRepo,
		rates,
		nil,
		logger,
	)
	if err != nil {
		logger.Fatalf("monthly run error: %v", err)
	}
	ticketService, err := maintenanceapp.NewTicketService(ticketRepo, nil)
	if err != nil {
		logger.Fatalf("ticket service error: %v", err)
	}

	authHandler, err := tenancyhttp.NewAuthHandler(authService)
	if err != nil {
		logger.Fatalf("auth handler error: %v", err)
	}
	contractHandler, err := tenancyhttp.NewContractHandler(contractService, auditRepo)
	if err != nil {
		logger.Fatalf("contract handler error: %v", err)
	}
	branchHandler, err := masterdatahttp.NewBranchHandler(branchRepo)
	if err != nil {
		logger.Fatalf("branch handler error: %v", err)
	}
	buildingHandler, err := masterdatahttp.NewBuildingHandler(buildingRepo)
	if err != nil {
		logger.Fatalf("building handler error: %v", err)
	}
	roomHandler, err := masterdatahttp.NewRoomHandler(roomRepo)
	if err != nil {
		logger.Fatalf("room handler error: %v", err)
	}
	equipmentHandler, err := masterdatahttp.NewEquipmentHandler(equipmentRepo)
	if err != nil {
		logger.Fatalf("equipment handler error: %v", err)
	}
	readingHandler, err := meteringhttp.NewReadingHandler(readingService)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	invoiceHandler, err := billinghttp.NewInvoiceHandler(invoiceService, auditRepo)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}
	exportHandler, err := billinghttp.NewExportHandler(invoiceService, nil)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}
	cronHandler, err := billinghttp.NewCronHandler(monthlyRun, cfg.CronSecret, cfg.CronAllowQuerySecret)
	if err != nil {
		logger.Fatalf("cron handler error: %v", err)
	}
	ticketHandler, err := maintenancehttp.NewTicketHandler(ticketService)
	if err != nil {
		logger.Fatalf("ticket handler error: %v", err)
	}

	scheduler := billingapp.NewScheduler(monthlyRun, cfg.BillingRunDay, cfg.BillingRunAt, logger)
	go scheduler.Start(context.Background())

	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics", "/api/v1/auth/login", "/api/v1/billing/run"},
		nil,
	)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/register", authHandler)
	mux.Handle("/api/v1/auth/login", authHandler)
	mux.Handle("/api/v1/branches", branchHandler)
	mux.Handle("/api/v1/branches/", branchHandler)
	mux.Handle("/api/v1/buildings", buildingHandler)
	mux.Handle("/api/v1/buildings/", buildingHandler)
	mux.Handle("/api/v1/rooms", roomHandler)
	mux.Handle("/api/v1/rooms/", roomHandler)
	mux.Handle("/api/v1/equipment", equipmentHandler)
	mux.Handle("/api/v1/equipment/", equipmentHandler)
	mux.Handle("/api/v1/contracts", contractHandler)
	mux.Handle("/api/v1/contracts/", contractHandler)
	mux.Handle("/api/v1/meter-readings", readingHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/exports/invoices.csv", exportHandler)
	mux.Handle("/api/v1/reports/billing.xlsx", exportHandler)
	mux.Handle("/api/v1/maintenance", ticketHandler)
	mux.Handle("/api/v1/maintenance/", ticketHandler)
	mux.Handle("/api/v1/dashboard/summary", apihttp.NewDashboardHandler(db))
	mux.Handle("/api/v1/billing/run", cronHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL          string
	HTTPAddr             string
	JWTSecret            string
	JWTTTL               time.Duration
	CronSecret           string
	CronAllowQuerySecret bool
	BillingRunDay        int
	BillingRunAt         string
	RatesFile            string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:          getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:             getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:            getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		JWTTTL:               getenvDuration("AUTH_JWT_TTL", 24*time.Hour),
		CronSecret:           getenvDefault("CRON_SECRET", ""),
		CronAllowQuerySecret: getenvBoolDefault("CRON_ALLOW_QUERY_SECRET", false),
		BillingRunDay:        getenvIntDefault("BILLING_RUN_DAY", 1),
		BillingRunAt:         getenvDefault("BILLING_RUN_AT", "02:00"),
		RatesFile:            getenvDefault("BILLING_RATES_FILE", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	if cfg.CronSecret == "" {
		log.Fatal("CRON_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		metrics.IncHTTPRequest(r.Method, pathClass(r.URL.Path))
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

// pathClass collapses request paths to a low-cardinality metric label.
func pathClass(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 4)
	if len(parts) >= 3 && parts[0] == "api" {
		return "/" + strings.Join(parts[:3], "/")
	}
	if len(parts) > 0 && parts[0] != "" {
		return "/" + parts[0]
	}
	return "/"
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
