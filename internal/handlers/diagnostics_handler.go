package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
)

var countedTables = []string{"profiles", "jobs", "categories", "skills"}

type DiagnosticsHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewDiagnosticsHandler(db *gorm.DB, log *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{DB: db, Log: log}
}

func (h *DiagnosticsHandler) Routes(r fiber.Router, _ middleware.Guards) {
	r.Get("/test-db", h.TestDB)
}

// TestDB reports connectivity, the table list and row counts.
func (h *DiagnosticsHandler) TestDB(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext())

	var serverTime string
	if err := db.Raw("SELECT CURRENT_TIMESTAMP").Row().Scan(&serverTime); err != nil {
		h.Log.Error("database check", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"hint":    "Check DB_DSN and that the database is reachable",
		})
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		h.Log.Warn("list tables", zap.Error(err))
		tables = []string{}
	}

	counts := fiber.Map{}
	for _, name := range countedTables {
		var n int64
		if err := db.Table(name).Count(&n).Error; err != nil {
			counts[name] = "Table not found"
			continue
		}
		counts[name] = n
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"server_time": serverTime,
			"tables":      tables,
			"counts":      counts,
		},
	})
}
