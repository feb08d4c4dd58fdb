package routes

import (
	"github.com/labstack/echo/v4"

	"gear-guard/internal/controllers"
)

func runMaintenanceRequestRouter(secureGroup *echo.Group, ctrl *controllers.MaintenanceRequestController, reportCtrl *controllers.ReportController) {
	requests := secureGroup.Group("/requests")
	requests.GET("", ctrl.GetRequests)
	requests.POST("", ctrl.CreateRequest)
	requests.GET("/export", reportCtrl.ExportRequests)
	requests.GET("/:id", ctrl.FindRequest)
	requests.PATCH("/:id/stage", ctrl.UpdateStage)
	requests.PATCH("/:id/duration", ctrl.LogDuration)
}
