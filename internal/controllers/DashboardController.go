package controllers

import (
	"counterd/internal/models"
	"counterd/internal/providers"
	"counterd/internal/services"
	json "github.com/goccy/go-json"
	"net/http"
	"strconv"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// DashboardController serves the operator dashboard as JSON.
type DashboardController struct {
	logger  providers.Logger
	service services.CounterServiceInterface
	cache   providers.CacheProviderInterface
}

func NewDashboardController(logger providers.Logger, service services.CounterServiceInterface, cache providers.CacheProviderInterface) *DashboardController {
	return &DashboardController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

// serveFromCacheOrCompute keys entries by store revision; any committed
// mutation moves readers to a fresh key.
func (dc *DashboardController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	key := cacheKey + "@" + strconv.FormatUint(dc.service.Revision(), 10)
	if data, ok := dc.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		dc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeJSONError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	dc.cache.Set(key, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (dc *DashboardController) mutationFailed(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		dc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
	}
	writeJSONError(w, err)
}

// GetUninstallRequests handles GET /api/uninstall/all
func (dc *DashboardController) GetUninstallRequests(w http.ResponseWriter, r *http.Request) {
	ch := models.ChannelKey(getChannel(r))
	dc.serveFromCacheOrCompute(w, r, "uninstall:"+ch, func() (any, error) {
		return dc.service.GetAllUninstallRequests(ch)
	})
}

// GetBosses handles GET /api/bosses
func (dc *DashboardController) GetBosses(w http.ResponseWriter, r *http.Request) {
	ch := models.ChannelKey(getChannel(r))
	dc.serveFromCacheOrCompute(w, r, "bosses:"+ch, func() (any, error) {
		return dc.service.GetAllBosses(ch)
	})
}

// GetChannels handles GET /api/channels
func (dc *DashboardController) GetChannels(w http.ResponseWriter, r *http.Request) {
	dc.serveFromCacheOrCompute(w, r, "channels", func() (any, error) {
		return dc.service.GetChannels()
	})
}

// GetChannel handles GET /api/channel
func (dc *DashboardController) GetChannel(w http.ResponseWriter, r *http.Request) {
	ch, ok, err := dc.service.GetChannel(getChannel(r))
	if err != nil {
		dc.mutationFailed(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "channel not found"})
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// ResetUninstallRequests handles DELETE /api/uninstall/reset
func (dc *DashboardController) ResetUninstallRequests(w http.ResponseWriter, r *http.Request) {
	if err := dc.service.ResetAllRequests(getChannel(r)); err != nil {
		dc.mutationFailed(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteUninstallRequest handles DELETE /api/uninstall/delete?program=
func (dc *DashboardController) DeleteUninstallRequest(w http.ResponseWriter, r *http.Request) {
	deleted, err := dc.service.DeleteRequest(getChannel(r), r.URL.Query().Get("program"))
	if err != nil {
		dc.mutationFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// ResetDeaths handles DELETE /api/deaths/reset
func (dc *DashboardController) ResetDeaths(w http.ResponseWriter, r *http.Request) {
	if err := dc.service.ResetChannelDeaths(getChannel(r)); err != nil {
		dc.mutationFailed(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type channelNamePayload struct {
	DisplayName string `json:"displayName"`
}

// UpdateChannelName handles POST /api/channel/name
func (dc *DashboardController) UpdateChannelName(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload channelNamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return
	}

	ch, err := dc.service.UpdateChannelName(getChannel(r), payload.DisplayName)
	if err != nil {
		dc.mutationFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}
