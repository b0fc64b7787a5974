package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/remotecfg/internal/views"
)

const (
	fetchConfigError  = "Failed to fetch config value"
	updateConfigError = "Failed to update config value"
)

// UpdateConfigForm is posted by the Activate and Deactivate buttons
type UpdateConfigForm struct {
	Value string `form:"value" binding:"required,oneof=0 1"`
}

func (s *Server) dashboardPage(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	page := views.DashboardPage{
		Layout: views.Layout{User: sessionData},
	}

	// Right after an update the echoed value is shown as is
	if c.Query("updated") == "1" {
		if snapshot := s.remoteConfig.Current(); snapshot.Known {
			page.State = views.StateReady
			page.Config = snapshot
			c.HTML(http.StatusOK, views.PageDashboard, page)
			return
		}
	}

	snapshot, err := s.remoteConfig.Fetch(c.Request.Context())
	page.Config = snapshot
	if err != nil {
		page.State = views.StateError
		page.Error = fetchConfigError
		c.HTML(http.StatusBadGateway, views.PageDashboard, page)
		return
	}

	page.State = views.StateReady
	c.HTML(http.StatusOK, views.PageDashboard, page)
}

func (s *Server) updateConfig(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	page := views.DashboardPage{
		Layout: views.Layout{User: sessionData},
		State:  views.StateError,
		Config: s.remoteConfig.Current(),
	}

	var form UpdateConfigForm
	if err := c.ShouldBind(&form); err != nil {
		page.Error = bindErrorMessage(err)
		c.HTML(http.StatusBadRequest, views.PageDashboard, page)
		return
	}

	value := form.Value == "1"
	snapshot, err := s.remoteConfig.Update(c.Request.Context(), value)
	if err != nil {
		s.logger.Warn().Str("username", sessionData.Username).Msg("Remote config update failed")
		page.Config = snapshot
		page.Error = updateConfigError
		c.HTML(http.StatusBadGateway, views.PageDashboard, page)
		return
	}

	c.Redirect(http.StatusSeeOther, dashboardPath+"?updated=1")
}

// @Summary Get remote config
// @Description Get the last known remote config value without calling the API
// @Tags config
// @Produce json
// @Success 200 {object} remoteconfig.Snapshot
// @Failure 401 {object} map[string]interface{}
// @Router /api/config [get]
func (s *Server) getConfigSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.remoteConfig.Current())
}
