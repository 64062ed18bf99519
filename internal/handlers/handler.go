package handlers

import (
	"motion_security/internal/logger"
	"motion_security/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live state stream on the same port.
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSecurityRoutes(api)
		h.registerIdentityRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSecurityRoutes(api *gin.RouterGroup) {
	security := api.Group("/security")
	{
		security.GET("/state", h.getState)
		// Body example: {"mode":"manual"}
		security.POST("/mode", h.setMode)
		security.POST("/motion", h.triggerMotion)
	}
}

func (h *Handler) registerIdentityRoutes(api *gin.RouterGroup) {
	ids := api.Group("/identities")
	{
		ids.GET("", h.listIdentities)
		ids.POST("/reload", h.reloadIdentities)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}
