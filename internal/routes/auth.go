package routes

import (
	"github.com/labstack/echo/v4"

	"gear-guard/internal/controllers"
	"gear-guard/pkg/middleware"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware, loginLimit echo.MiddlewareFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authCtrl.Signup)
		authGroup.POST("/login", authCtrl.Login, loginLimit)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
}
