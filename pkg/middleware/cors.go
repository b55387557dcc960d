package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
)

// CORSMiddleware 跨域配置，调试模式放开全部来源.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowWebSockets = true
	config.AllowFiles = true

	if cfg.Debug {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{"*"}
	}

	return cors.New(config)
}
