package v1

import (
	"net/http"

	"contact-mail-backend/config"
	_ "contact-mail-backend/docs" // Important for Swagger
	"contact-mail-backend/internal/delivery/http/middleware"
	"contact-mail-backend/internal/delivery/http/response"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/internal/usecase"
	"contact-mail-backend/pkg/apperror"
	"contact-mail-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	MailLog   domain.RequestLogger
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	setTrustedProxies(r, deps.Config)

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(middleware.RequestID(deps.MailLog))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"ok": true}
		if deps.HealthUC != nil {
			body["transports"] = deps.HealthUC.Check(c.Request.Context())
		}
		c.JSON(http.StatusOK, body)
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	contact := NewContactHandler(r, deps.ContactUC, deps.MailLog)
	r.NoMethod(contact.NoMethod)
	r.NoRoute(func(c *gin.Context) {
		c.Error(apperror.NotFound(response.MsgNotFound))
	})

	return r
}

// setTrustedProxies makes ClientIP honor X-Forwarded-For only behind a
// configured proxy. Otherwise the peer address is the client.
func setTrustedProxies(r *gin.Engine, cfg *config.Config) {
	if !cfg.TrustProxy {
		_ = r.SetTrustedProxies(nil)
		return
	}
	proxies := cfg.TrustedProxies
	if len(proxies) == 0 {
		proxies = []string{"0.0.0.0/0", "::/0"}
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.Log.Warn("invalid TRUSTED_PROXIES, forwarded headers ignored", "proxies", proxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}
}
