package main

import (
	"github.com/arborhq/arbor/internal/config"
	"github.com/arborhq/arbor/internal/handlers"
	"github.com/arborhq/arbor/internal/models"
	"github.com/arborhq/arbor/internal/services"
	"github.com/arborhq/arbor/internal/utils"
	"github.com/arborhq/arbor/pkg/logger"
)

// appHandlers holds the initialized handlers wired to the engine services.
type appHandlers struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	treePrivacy   *handlers.TreePrivacyHandler
	memberPrivacy *handlers.MemberPrivacyHandler
	requests      *handlers.ConnectionRequestHandler
	connections   *handlers.ConnectionHandler
	access        *handlers.AccessHandler
	auditLog      *handlers.AuditLogHandler
	blockList     *handlers.BlockListHandler
}

// bootstrap initializes the database and builds the service graph. The DB
// handle is injected into every service; nothing holds global state.
func bootstrap(cfg *config.Config) *appHandlers {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	accessService := services.NewAccessService(db)
	auditService := services.NewPrivacyAuditService(db, accessService)
	authService := services.NewAuthService(db, &cfg.JWT)
	treePrivacy := services.NewTreePrivacyService(db, accessService, auditService)
	memberPrivacy := services.NewMemberPrivacyService(db, accessService, auditService)
	blockList := services.NewBlockListService(db, accessService, auditService)
	requests := services.NewConnectionRequestService(db, accessService, auditService)
	connections := services.NewConnectionService(db, accessService, auditService)

	return &appHandlers{
		health:        handlers.NewHealthHandler(db),
		auth:          handlers.NewAuthHandler(authService),
		treePrivacy:   handlers.NewTreePrivacyHandler(treePrivacy),
		memberPrivacy: handlers.NewMemberPrivacyHandler(memberPrivacy),
		requests:      handlers.NewConnectionRequestHandler(requests),
		connections:   handlers.NewConnectionHandler(connections),
		access:        handlers.NewAccessHandler(accessService),
		auditLog:      handlers.NewAuditLogHandler(auditService),
		blockList:     handlers.NewBlockListHandler(blockList),
	}
}
