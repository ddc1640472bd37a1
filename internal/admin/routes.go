package admin

import (
	"embed"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mjfern/rootdns/internal/admin/docs"
)

//go:embed static/*
var embeddedStatic embed.FS

func registerRoutes(r *gin.Engine, h *handlerSet) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", h.healthz)
	r.GET("/stats", h.statsHandler)

	fs, err := static.EmbedFolder(embeddedStatic, "static")
	if err != nil {
		panic("admin: failed to load embedded status page: " + err.Error())
	}
	r.Use(static.Serve("/", fs))
}
