package router

import (
	"rewear/internal/handler"

	"github.com/gin-gonic/gin"
)

type MediaRouter struct {
	mediaHandler *handler.MediaHandler
}

func NewMediaRouter(mediaHandler *handler.MediaHandler) *MediaRouter {
	return &MediaRouter{mediaHandler: mediaHandler}
}

func (mr *MediaRouter) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/media/*key", mr.mediaHandler.Get)
}
