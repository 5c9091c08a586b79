package router

import (
	"github.com/diogoammendes/SideSales/internal/config"
	"github.com/diogoammendes/SideSales/internal/handler"
	"github.com/diogoammendes/SideSales/internal/middleware"
	"github.com/diogoammendes/SideSales/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts the JSON API.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)

	// ADMIN and MANAGER may write; VIEWER only reads
	manage := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	dashboardHandler := handler.NewDashboardHandler(db)
	protected.GET("/dashboard", dashboardHandler.Dashboard)

	pageSize := cfg.App.PageSize

	purchaseHandler := handler.NewPurchaseHandler(db, pageSize)
	protected.GET("/purchases", purchaseHandler.List)
	protected.GET("/purchases/:id", purchaseHandler.Get)
	protected.POST("/purchases", manage, purchaseHandler.Create)
	protected.PUT("/purchases/:id", manage, purchaseHandler.Update)
	protected.DELETE("/purchases/:id", manage, purchaseHandler.Delete)
	protected.POST("/purchases/:id/contributions", manage, purchaseHandler.AddContribution)
	protected.DELETE("/purchases/:id/contributions/:cid", manage, purchaseHandler.DeleteContribution)
	protected.POST("/purchases/:id/costs", manage, purchaseHandler.AddCost)
	protected.DELETE("/purchases/:id/costs/:cid", manage, purchaseHandler.DeleteCost)

	saleHandler := handler.NewSaleHandler(db, pageSize)
	protected.GET("/sales", saleHandler.List)
	protected.GET("/sales/:id", saleHandler.Get)
	protected.POST("/sales", manage, saleHandler.Create)
	protected.PUT("/sales/:id", manage, saleHandler.Update)
	protected.DELETE("/sales/:id", manage, saleHandler.Delete)
	protected.POST("/sales/:id/payments", manage, saleHandler.AddPayment)
	protected.DELETE("/sales/:id/payments/:pid", manage, saleHandler.DeletePayment)

	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	protected.GET("/users", adminOnly, userHandler.List)
	protected.POST("/users", adminOnly, userHandler.Create)
	protected.PUT("/users/:id", adminOnly, userHandler.Update)
	protected.POST("/users/:id/password", adminOnly, userHandler.SetPassword)

	profileHandler := handler.NewProfileHandler(db, cfg.Security.BcryptCost)
	protected.GET("/me", profileHandler.Me)
	protected.PUT("/me", profileHandler.UpdateMe)
	protected.POST("/me/password", profileHandler.ChangePassword)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, cfg.Backup.Dir)
	protected.POST("/backups", adminOnly, backupHandler.CreateBackup)
	protected.GET("/backups", adminOnly, backupHandler.ListBackups)
	protected.GET("/backups/:id/download", adminOnly, backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", adminOnly, backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", adminOnly, backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db, pageSize)
	protected.GET("/logs", adminOnly, logHandler.List)

	return r
}
