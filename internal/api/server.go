package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface. Registration and login are public;
// everything else requires a bearer token.
func NewRouter(
	transfers *TransferHandler,
	accounts *AccountHandler,
	jwtSecret []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api")
	public.POST("/accounts/register", accounts.Register)
	public.POST("/accounts/login", accounts.Login)

	protected := r.Group("/api", authRequired(jwtSecret))
	protected.GET("/accounts", accounts.ListAccounts)
	protected.GET("/accounts/:id", accounts.GetAccount)
	protected.GET("/accounts/:id/balance", accounts.GetBalance)
	protected.POST("/transfers", transfers.CreateTransfer)
	protected.GET("/transfers", transfers.ListTransfers)
	protected.GET("/transfers/:id", transfers.GetTransfer)

	return r
}
