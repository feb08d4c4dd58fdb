package routes

import (
	"github.com/labstack/echo/v4"

	"gear-guard/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController) {
	secureGroup.GET("/equipment", ctrl.GetEquipments)
	secureGroup.POST("/equipment", ctrl.CreateEquipment)
	secureGroup.POST("/equipment/import", ctrl.ImportEquipment)
	secureGroup.GET("/equipment/:id", ctrl.FindEquipment)
	secureGroup.PUT("/equipment/:id", ctrl.UpdateEquipment)
}
