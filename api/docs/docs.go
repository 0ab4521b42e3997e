// Package docs serves the OpenAPI document and the Swagger UI over it.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed openapi.json
var openAPI []byte

const documentPath = "/openapi.json"

// Register mounts GET /openapi.json and the Swagger UI at /swagger/index.html.
func Register(engine *gin.Engine) {
	engine.GET(documentPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", openAPI)
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(documentPath)))
}
