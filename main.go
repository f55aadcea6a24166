package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/config"
	"github.com/ayushhkrr/PromptVerse/controller"
	"github.com/ayushhkrr/PromptVerse/dao"
	"github.com/ayushhkrr/PromptVerse/logic"
	"github.com/ayushhkrr/PromptVerse/middleware"
	"github.com/ayushhkrr/PromptVerse/models"
	"github.com/ayushhkrr/PromptVerse/pkg"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: promptverse <config.yaml>")
	}
	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", os.Args[1], err)
	}

	// Database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Prompt{}, &models.Order{}, &models.AuditLog{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// External clients
	paymentClient := pkg.NewPaymentClient(cfg.Payment.SecretKey)
	genClient := pkg.NewGenClient(cfg.GenAI.APIKey, cfg.GenAI.BaseURL, cfg.GenAI.ChatModel, cfg.GenAI.ImageModel)
	storageClient := pkg.NewStorageClient(cfg.Storage.CloudName, cfg.Storage.APIKey, cfg.Storage.APISecret)

	var publisher logic.EventPublisher
	if cfg.MQ.URL != "" {
		pub, err := pkg.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	// DAOs
	userDAO := dao.NewUserDAO(db)
	promptDAO := dao.NewPromptDAO(db)
	orderDAO := dao.NewOrderDAO(db)
	auditDAO := dao.NewAuditLogDAO(db)

	// Logics
	userLogic := logic.NewUserLogic(userDAO, auditDAO, cfg, oauthConfig)
	promptLogic := logic.NewPromptLogic(promptDAO, storageClient, auditDAO)
	previewLogic := logic.NewPreviewLogic(promptDAO, genClient)
	checkoutLogic := logic.NewCheckoutLogic(promptDAO, paymentClient, cfg)
	orderLogic := logic.NewOrderLogic(orderDAO, promptDAO, auditDAO, publisher)
	adminLogic := logic.NewAdminLogic(userDAO, promptDAO, orderDAO, auditDAO)

	// Controllers
	userCtrl := controller.NewUserController(userLogic)
	promptCtrl := controller.NewPromptController(promptLogic, previewLogic)
	orderCtrl := controller.NewOrderController(checkoutLogic, orderLogic, cfg.Payment.WebhookSecret)
	adminCtrl := controller.NewAdminController(adminLogic)

	// Router
	r := gin.Default()
	r.Use(middleware.ClientIP())

	authed := middleware.Auth(cfg.Auth.Secret, userDAO)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api/v1")
	{
		users := api.Group("/users")
		users.POST("/register", userCtrl.Register)
		users.POST("/login", userCtrl.Login)
		users.GET("/google/login", userCtrl.GoogleLogin)
		users.GET("/google/callback", userCtrl.GoogleCallback)
		users.GET("/me", authed, userCtrl.Me)
		users.PATCH("/become-seller", authed, userCtrl.BecomeSeller)
		users.PATCH("/:id", authed, userCtrl.Update)
		users.DELETE("/:id", authed, userCtrl.Delete)

		prompts := api.Group("/prompts")
		prompts.GET("", promptCtrl.ListApproved)
		prompts.POST("", authed, promptCtrl.Create)
		prompts.GET("/mine", authed, promptCtrl.ListMine)
		prompts.GET("/:id", promptCtrl.Get)
		prompts.GET("/:id/preview", promptCtrl.Preview)
		prompts.PATCH("/:id", authed, promptCtrl.Update)
		prompts.DELETE("/:id", authed, promptCtrl.Delete)
		prompts.PATCH("/:id/status", authed, adminOnly, promptCtrl.SetStatus)

		orders := api.Group("/orders")
		// The webhook route must see the raw body; no middleware parses it.
		orders.POST("/webhook", orderCtrl.Webhook)
		orders.POST("/checkout/:id", authed, orderCtrl.Checkout)
		orders.GET("/prompts", authed, orderCtrl.MyPurchases)

		admin := api.Group("/admin", authed, adminOnly)
		admin.GET("/stats", adminCtrl.Stats)
		admin.GET("/users", adminCtrl.ListUsers)
		admin.GET("/prompts", adminCtrl.ListPrompts)
		admin.PATCH("/users/:id/status", adminCtrl.SetUserStatus)
	}

	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
