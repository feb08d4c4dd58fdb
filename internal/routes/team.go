package routes

import (
	"github.com/labstack/echo/v4"

	"gear-guard/internal/controllers"
)

func runTeamRouter(secureGroup *echo.Group, ctrl *controllers.TeamController) {
	secureGroup.GET("/teams", ctrl.GetTeams)
	secureGroup.GET("/teams/:id", ctrl.FindTeam)
}

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard", ctrl.GetDashboardStats)
}
