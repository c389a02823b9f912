package router

import (
	"cinema-go/internal/api/handler"
	"cinema-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由，throttle 可为 nil
func Setup(
	r *gin.Engine,
	commentHandler *handler.CommentHandler,
	searchHandler *handler.SearchHandler,
	throttle gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1")
	if throttle != nil {
		v1.Use(throttle)
	}

	// --- 评论模块 ---
	comments := v1.Group("/comments")
	{
		// 公开接口（不需要登录）
		comments.GET("/movie/:movie_id", commentHandler.ListByMovie)
		comments.GET("/movie/:movie_id/count", commentHandler.CountByMovie)
		comments.GET("/recent", commentHandler.ListRecent)
		comments.GET("/search", searchHandler.SearchComments)

		commentsAuth := comments.Group("", middleware.AuthRequired())
		{
			commentsAuth.POST("", commentHandler.Create)
			commentsAuth.POST("/:id/replies", commentHandler.Reply)
			commentsAuth.PATCH("/:id", commentHandler.Update)
			commentsAuth.DELETE("/:id", commentHandler.Delete)
			commentsAuth.POST("/:id/vote", commentHandler.Vote)
		}
	}
}
