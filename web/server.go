package web

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"splitsui/classify"
	"splitsui/config"
	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
	"splitsui/recon"
	"splitsui/store/store"
	"splitsui/submit"
)

// Services bundles everything the HTTP layer serves. Archive may be nil
// when the server runs without a database.
type Services struct {
	Config     *config.Config
	Log        *zap.Logger
	Client     ledger.Client
	Reconciler *recon.Reconciler
	Classifier *classify.Classifier
	Submitter  *submit.Service
	Notifier   notify.PaymentMessageQueueWrapper
	Archive    store.Archive
}

func setupRouter(svc Services) *gin.Engine {
	r := gin.New()
	setupMiddlewares(r, svc.Log)

	h := newHandler(svc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/requests/:address", h.getRequests)
		api.GET("/history/:address", h.getHistory)
		api.POST("/send", h.postMultiSend)
		api.POST("/group-payments", h.postCreateGroupPayment)
		api.POST("/group-payments/:id/contribute", h.postContribute)
		api.POST("/group-payments/:id/release", h.postManualRelease)
		api.POST("/group-payments/:id/cancel", h.postCancel)
		api.GET("/archive/requests/:address", h.getArchivedRequests)
		api.GET("/archive/history/:address", h.getArchivedHistory)
	}

	r.GET("/ws/:address", h.streamEvents)

	return r
}

// Serve starts the HTTP server on the configured port and blocks.
func Serve(svc Services) error {
	return setupRouter(svc).Run(":" + svc.Config.Port)
}
