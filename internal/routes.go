package internal

import (
	"counterd/internal/controllers"
	"counterd/internal/providers"
	"net/http"
)

func InitRoutes(commandController *controllers.CommandController, dashboardController *controllers.DashboardController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	// Chat bot commands
	routers.Get("/api/uninstall", http.HandlerFunc(commandController.Uninstall))
	routers.Get("/api/death", http.HandlerFunc(commandController.Death))
	routers.Get("/api/deaths", http.HandlerFunc(commandController.Deaths))
	routers.Get("/api/beaten", http.HandlerFunc(commandController.Beaten))
	routers.Get("/api/total-deaths", http.HandlerFunc(commandController.TotalDeaths))
	routers.Get("/api/setdeaths", http.HandlerFunc(commandController.SetDeaths))

	// Dashboard
	routers.Get("/api/uninstall/all", http.HandlerFunc(dashboardController.GetUninstallRequests))
	routers.Delete("/api/uninstall/reset", http.HandlerFunc(dashboardController.ResetUninstallRequests))
	routers.Delete("/api/uninstall/delete", http.HandlerFunc(dashboardController.DeleteUninstallRequest))
	routers.Get("/api/bosses", http.HandlerFunc(dashboardController.GetBosses))
	routers.Delete("/api/deaths/reset", http.HandlerFunc(dashboardController.ResetDeaths))
	routers.Get("/api/channels", http.HandlerFunc(dashboardController.GetChannels))
	routers.Get("/api/channel", http.HandlerFunc(dashboardController.GetChannel))
	routers.Post("/api/channel/name", http.HandlerFunc(dashboardController.UpdateChannelName))
	return routers
}
