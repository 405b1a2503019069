package controllers

import (
	"counterd/internal/models"
	"counterd/internal/providers"
	"counterd/internal/services"
	"errors"
	"github.com/spf13/cast"
	"net/http"
	"strings"
)

// CommandController answers chat bot commands with a single line of text.
type CommandController struct {
	logger  providers.Logger
	service services.CounterServiceInterface
}

func NewCommandController(logger providers.Logger, service services.CounterServiceInterface) *CommandController {
	return &CommandController{
		logger:  logger,
		service: service,
	}
}

func (cc *CommandController) streamer(channel string) string {
	ch, ok, err := cc.service.GetChannel(channel)
	if err != nil || !ok {
		return models.ChannelKey(channel)
	}
	return ch.DisplayName
}

func (cc *CommandController) fail(w http.ResponseWriter, r *http.Request, err error, clientMsg, serverMsg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		cc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeText(w, status, "%s", serverMsg)
		return
	}
	cc.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
	writeText(w, status, "%s", clientMsg)
}

// parseCount accepts a decimal count. Leading zeros are dropped so cast
// does not read the value as octal.
func parseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if s == "" || strings.ContainsAny(s, "xXoObB._") {
		return 0, errors.New("not a decimal number")
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return cast.ToIntE(sign + s)
}

// Uninstall handles GET /api/uninstall?program=
func (cc *CommandController) Uninstall(w http.ResponseWriter, r *http.Request) {
	program := r.URL.Query().Get("program")
	if strings.TrimSpace(program) == "" {
		writeText(w, http.StatusBadRequest, "Program name is required")
		return
	}

	req, err := cc.service.IncrementUninstallCount(getChannel(r), program)
	if err != nil {
		cc.fail(w, r, err, "Program name is required", "Failed to process request")
		return
	}
	writeText(w, http.StatusOK, "Chat has requested to uninstall %s %d %s. Go ahead and do it already!",
		req.ProgramName, req.Count, times(req.Count))
}

// Death handles GET /api/death?boss=
func (cc *CommandController) Death(w http.ResponseWriter, r *http.Request) {
	ch := getChannel(r)
	boss, err := cc.service.IncrementDeaths(ch, r.URL.Query().Get("boss"))
	if err != nil {
		cc.fail(w, r, err, "No active boss found. Use !death <boss name> to start tracking.", "Failed to record death")
		return
	}
	writeText(w, http.StatusOK, "%s has died to %s %d %s", cc.streamer(ch), boss.Name, boss.DeathCount, times(boss.DeathCount))
}

// Deaths handles GET /api/deaths?boss= and reports without counting.
func (cc *CommandController) Deaths(w http.ResponseWriter, r *http.Request) {
	ch := getChannel(r)
	name := r.URL.Query().Get("boss")

	var (
		boss *models.Boss
		ok   bool
		err  error
	)
	if strings.TrimSpace(name) != "" {
		boss, ok, err = cc.service.GetBoss(ch, name)
	} else {
		boss, ok, err = cc.service.GetActiveBoss(ch)
	}
	if err != nil {
		cc.fail(w, r, err, "Failed to fetch death records", "Failed to fetch death records")
		return
	}

	switch {
	case !ok && strings.TrimSpace(name) != "":
		writeText(w, http.StatusOK, "No death records found for %s", models.DisplayName(name))
	case !ok:
		writeText(w, http.StatusOK, "No active boss is currently being tracked.")
	case boss.IsBeaten && boss.FinalDeathCount != nil:
		writeText(w, http.StatusOK, "It took %d attempts for %s to beat %s", *boss.FinalDeathCount, cc.streamer(ch), boss.Name)
	default:
		writeText(w, http.StatusOK, "%s has died to %s %d %s", cc.streamer(ch), boss.Name, boss.DeathCount, times(boss.DeathCount))
	}
}

// Beaten handles GET /api/beaten?boss=
func (cc *CommandController) Beaten(w http.ResponseWriter, r *http.Request) {
	ch := getChannel(r)
	name := r.URL.Query().Get("boss")
	boss, err := cc.service.MarkBeaten(ch, name)
	if err != nil {
		msg := "No active boss found to mark as beaten."
		if errors.Is(err, models.ErrNotFound) {
			msg = "No boss named " + models.DisplayName(name) + " is being tracked."
		}
		cc.fail(w, r, err, msg, "Failed to mark boss as beaten")
		return
	}
	final := boss.DeathCount
	if boss.FinalDeathCount != nil {
		final = *boss.FinalDeathCount
	}
	writeText(w, http.StatusOK, "It took %d attempts for %s to beat %s", final, cc.streamer(ch), boss.Name)
}

// TotalDeaths handles GET /api/total-deaths
func (cc *CommandController) TotalDeaths(w http.ResponseWriter, r *http.Request) {
	ch := getChannel(r)
	total, err := cc.service.TotalDeaths(ch)
	if err != nil {
		cc.fail(w, r, err, "Failed to calculate total deaths", "Failed to calculate total deaths")
		return
	}
	writeText(w, http.StatusOK, "%s has died a total of %d times across all bosses", cc.streamer(ch), total)
}

// SetDeaths handles GET /api/setdeaths?boss=&count=
func (cc *CommandController) SetDeaths(w http.ResponseWriter, r *http.Request) {
	const usage = "Usage: !setdeaths <boss name> <count>"

	q := r.URL.Query()
	name := q.Get("boss")
	count, err := parseCount(q.Get("count"))
	if strings.TrimSpace(name) == "" || err != nil {
		writeText(w, http.StatusBadRequest, usage)
		return
	}

	boss, err := cc.service.SetDeaths(getChannel(r), name, count)
	if err != nil {
		cc.fail(w, r, err, usage, "Failed to update death counter")
		return
	}
	writeText(w, http.StatusOK, "Death counter for %s set to %d", boss.Name, boss.DeathCount)
}
