package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/pecapital-crm/internal/infra/http/handlers"
	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pecapital-crm/internal/infra/integration/stripe"
	"github.com/xavierca1/pecapital-crm/internal/infra/mail"
	"github.com/xavierca1/pecapital-crm/internal/infra/queue"
	"github.com/xavierca1/pecapital-crm/internal/storage"
	"github.com/xavierca1/pecapital-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	// 1. Storage: postgres when DATABASE_URL is set, otherwise in-memory demo
	var store storage.Storage
	var db *sql.DB

	if connString := os.Getenv("DATABASE_URL"); connString != "" {
		var err error
		db, err = storage.NewConnection(connString)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		store = storage.NewPostgresStorage(db)
		log.Println("Using postgres storage")
	} else {
		mem := storage.NewMemoryStorage()
		if err := mem.SeedDefaults(); err != nil {
			log.Fatalf("seeding memory storage failed: %v", err)
		}
		store = mem
		log.Println("DATABASE_URL not set, using in-memory storage")
	}

	// 2. Mail (optional)
	var mailer *mail.EmailSender
	if host := os.Getenv("MAIL_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
		if port == 0 {
			port = 587
		}
		mailer = mail.NewEmailSender(host, port, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"), os.Getenv("MAIL_FROM"))
	}

	// 3. Queue + worker (optional)
	var producer queue.ProducerInterface
	var rabbit *queue.RabbitMQ
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		var err error
		rabbit, err = queue.NewRabbitMQ(url)
		if err != nil {
			log.Fatalf("rabbitmq connection failed: %v", err)
		}
		defer rabbit.Close()

		producer = queue.NewProducer(rabbit.Conn, rabbit.Ch)

		var workerMailer queue.EmailSender
		if mailer != nil {
			workerMailer = mailer
		}
		worker := queue.NewWorker(rabbit.Ch, store, workerMailer)
		go worker.Start(queue.QueueName)
	}

	// 4. Payment gateway (optional)
	var gateway handlers.PaymentGateway
	if apiKey := os.Getenv("STRIPE_SECRET_KEY"); apiKey != "" {
		gateway = stripe.NewClient(apiKey, os.Getenv("STRIPE_API_URL"))
	}

	// 5. UseCases
	captureLeadUC := usecase.NewCaptureLeadUseCase(store, producer)

	var sendMailer usecase.EmailService
	if mailer != nil {
		sendMailer = mailer
	}
	sendCampaignUC := usecase.NewSendCampaignEmailUseCase(store, sendMailer)

	// 6. Handlers
	leadHandler := handlers.NewLeadHandler(captureLeadUC, store)
	bookingHandler := handlers.NewBookingHandler(store)
	investmentHandler := handlers.NewInvestmentHandler(store)
	emailHandler := handlers.NewEmailHandler(store, sendCampaignUC)
	analyticsHandler := handlers.NewAnalyticsHandler(store)
	authHandler := handlers.NewAuthHandler(store)
	paymentHandler := handlers.NewPaymentHandler(gateway)

	var healthHandler *handlers.HealthHandler
	if rabbit != nil {
		healthHandler = handlers.NewHealthHandler(db, rabbit.Conn)
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil)
	}

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// Public surface: capture forms, auth, payment intent, tracking links
	r.Post("/api/leads", leadHandler.HandleCapture)
	r.Post("/api/bookings", bookingHandler.HandleCreate)
	r.Post("/api/register", authHandler.HandleRegister)
	r.Post("/api/login", authHandler.HandleLogin)
	r.Post("/api/logout", authHandler.HandleLogout)
	r.Post("/api/create-payment-intent", paymentHandler.HandleCreateIntent)
	r.Get("/api/email-sends/{id}/open", emailHandler.HandleTrackOpen)
	r.Get("/api/email-sends/{id}/click", emailHandler.HandleTrackClick)

	// Session-gated surface: dashboard and portal
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(store))

		r.Get("/api/me", authHandler.HandleMe)

		r.Get("/api/leads", leadHandler.HandleList)
		r.Get("/api/leads/{id}", leadHandler.HandleGet)
		r.Put("/api/leads/{id}", leadHandler.HandleUpdate)

		r.Get("/api/bookings", bookingHandler.HandleList)
		r.Get("/api/my-bookings", bookingHandler.HandleListMine)
		r.Put("/api/bookings/{id}", bookingHandler.HandleUpdate)

		r.Post("/api/investments", investmentHandler.HandleCreate)
		r.Get("/api/investments", investmentHandler.HandleList)
		r.Put("/api/investments/{id}", investmentHandler.HandleUpdate)

		r.Get("/api/email-sequences", emailHandler.HandleListSequences)
		r.Post("/api/email-sequences", emailHandler.HandleCreateSequence)
		r.Get("/api/email-templates/{sequenceId}", emailHandler.HandleListTemplates)
		r.Post("/api/email-templates", emailHandler.HandleCreateTemplate)
		r.Post("/api/email-sends", emailHandler.HandleCreateSend)

		r.Get("/api/analytics/leads", analyticsHandler.HandleLeadStats)
		r.Get("/api/analytics/investments", analyticsHandler.HandleInvestmentStats)
		r.Get("/api/analytics/emails", analyticsHandler.HandleEmailStats)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("PE Capital CRM API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
