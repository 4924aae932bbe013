// Package router はHTTPルーティングを組み立てます。
package router

import (
	"github.com/gin-gonic/gin"

	coinhandler "coin_backend/internal/feature/coins/transport/handler"
	"coin_backend/internal/platform/http/handler"
)

// NewRouter はコインAPIとヘルスチェックのルートを登録したエンジンを返します。
// 参照系は認証不要、書き込み系はwriteGuardsで渡されたミドルウェア（認証・レート制限）の背後に置きます。
func NewRouter(coins *coinhandler.CoinHandler, ready gin.HandlerFunc, writeGuards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", ready)

	g := r.Group("/coins")
	{
		g.GET("", coins.List)
		g.GET("/sorted/name-desc", coins.ListByNameDesc)
		g.GET("/sorted/description-desc-name-asc", coins.ListByDescriptionDescNameAsc)
		g.GET("/by-name", coins.GetByName)
		g.GET("/first", coins.First)
		g.GET("/latest", coins.Latest)
	}

	// 認証必須のルート
	w := r.Group("/coins")
	w.Use(writeGuards...)
	{
		w.POST("", coins.Create)
		w.PUT("/:id", coins.Update)
		w.DELETE("/:id", coins.Delete)
	}

	return r
}
