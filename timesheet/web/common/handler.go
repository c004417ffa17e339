package common

import (
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/core"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Dm *core.DatabaseManager
}

func (h *Handler) GetDB(c *gin.Context) (*gorm.DB, error) {
	return h.Dm.GetDB(c.Request.Context())
}
