package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
)

// RegisterRoutes sets up all API routes. Every route requires a valid token;
// writes are rate limited per user and configuration changes require the admin role.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, royaltyHandler *RoyaltyHandler, clientHandler *ClientHandler, settingsHandler *SettingsHandler, reportHandler *ReportHandler, exportHandler *ExportHandler, importHandler *ImportHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	admin := middleware.RequireRole(middleware.RoleAdmin)

	// Royalty entry routes
	entries := api.Group("/royalty-entries")
	entries.POST("", royaltyHandler.SaveEntry)
	entries.GET("", royaltyHandler.ListEntries)
	entries.POST("/preview", royaltyHandler.Preview)
	entries.POST("/link-prs", royaltyHandler.LinkPRS)
	entries.GET("/previous-outstanding/:clientId/:month", royaltyHandler.GetPreviousOutstanding)
	entries.POST("/recalculate", royaltyHandler.RecalculateAll, admin)
	entries.POST("/recalculate/:clientId", royaltyHandler.RecalculateClient)
	entries.GET("/:clientId/:month", royaltyHandler.GetEntry)
	entries.DELETE("/:clientId/:month", royaltyHandler.DeleteEntry)
	entries.PATCH("/:clientId/:month/status", royaltyHandler.UpdateStatus)

	// Client routes
	clients := api.Group("/clients")
	clients.GET("", clientHandler.ListClients)
	clients.POST("", clientHandler.CreateClient)
	clients.POST("/bulk", clientHandler.BulkUpsertClients)
	clients.GET("/:clientId", clientHandler.GetClient)
	clients.PUT("/:clientId", clientHandler.UpdateClient)
	clients.DELETE("/:clientId", clientHandler.DeleteClient)

	// Settings routes
	settings := api.Group("/settings")
	settings.GET("", settingsHandler.ListSettings)
	settings.POST("/initialize", settingsHandler.Initialize, admin)
	settings.PUT("/financial-year", settingsHandler.SetFinancialYear, admin)
	settings.PUT("/exchange-rate", settingsHandler.SetExchangeRate, admin)
	settings.PUT("/usd-exchange-rate", settingsHandler.SetUSDExchangeRate, admin)
	settings.GET("/:key", settingsHandler.GetSetting)
	settings.PUT("/:key", settingsHandler.SetSetting, admin)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/gst-invoice", reportHandler.GSTInvoice)
	reports.GET("/receipts-tds", reportHandler.ReceiptsTDS)
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/client/:clientId", reportHandler.Client)
	reports.GET("/digest", reportHandler.Digest)
	reports.POST("/digest/send", reportHandler.SendDigest, admin)

	// Export routes
	exports := api.Group("/exports")
	exports.GET("/csv", exportHandler.ExportCSV)
	exports.GET("/xlsx", exportHandler.ExportXLSX)
	exports.POST("/archive", exportHandler.Archive)

	// Import routes
	api.POST("/imports", importHandler.ImportWorkbook, admin)
}
