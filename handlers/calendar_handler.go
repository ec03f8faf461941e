package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gameplanAPI/middleware"
	"gameplanAPI/services"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
	accessService   *services.AccessService
	shareService    *services.ShareService
	loc             *time.Location
}

func NewCalendarHandler(calendarService *services.CalendarService, accessService *services.AccessService, shareService *services.ShareService, loc *time.Location) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		accessService:   accessService,
		shareService:    shareService,
		loc:             loc,
	}
}

// GetMonth renders a month grid of the owner's calendar, gated by the access
// rules. An anonymous viewer with no capability gets a 401 pointing at the
// login page; an authenticated viewer who isn't allowed gets a 403 pointing
// back at their own calendar.
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, err := uuid.Parse(mux.Vars(r)["userID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	viewerID, _ := middleware.GetUserID(ctx)
	cap := middleware.GetCapability(ctx)

	grant, err := h.accessService.CanViewCalendar(ctx, viewerID, ownerID, cap)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !grant.Allowed() {
		if viewerID == uuid.Nil {
			respondWithJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Authentication required",
				"redirect": "/",
			})
			return
		}
		respondWithJSON(w, http.StatusForbidden, map[string]string{
			"error":    "You may only view calendars shared with you",
			"redirect": "/api/v1/calendar/" + viewerID.String(),
		})
		return
	}

	year, month, err := parseMonthParam(r.URL.Query().Get("month"), h.loc)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.calendarService.GetMonth(ctx, ownerID, year, month, grant)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	middleware.CountCalendarRender(string(grant))
	respondWithJSON(w, http.StatusOK, resp)
}

// parseMonthParam reads a "YYYY-M" month selector, defaulting to the current
// month.
func parseMonthParam(raw string, loc *time.Location) (int, time.Month, error) {
	if raw == "" {
		now := time.Now().In(loc)
		return now.Year(), now.Month(), nil
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("month must look like YYYY-M")
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("month must look like YYYY-M")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("month must look like YYYY-M")
	}
	return year, time.Month(m), nil
}

// AccessCalendar redeems a share token: mint the capability cookie and send
// the visitor on to the shared calendar. The token itself never expires and
// stays valid for later visitors.
func (h *CalendarHandler) AccessCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, err := uuid.Parse(r.URL.Query().Get("token"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid share token")
		return
	}

	ownerID, err := h.shareService.ResolveToken(ctx, token)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if err := middleware.SetCapabilityCookie(w, ownerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to grant access")
		return
	}

	http.Redirect(w, r, "/api/v1/calendar/"+ownerID.String(), http.StatusFound)
}

// CreateShareLink mints a fresh share token for the caller's own calendar.
func (h *CalendarHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	_, link, err := h.shareService.CreateShareLink(ctx, userID, baseURL(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"share_link": link})
}

// ExportICS streams the owner's full calendar as an iCalendar file, behind
// the same gate as the month view.
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, err := uuid.Parse(mux.Vars(r)["userID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	viewerID, _ := middleware.GetUserID(ctx)
	cap := middleware.GetCapability(ctx)

	grant, err := h.accessService.CanViewCalendar(ctx, viewerID, ownerID, cap)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !grant.Allowed() {
		respondWithError(w, http.StatusForbidden, "You may only export calendars shared with you")
		return
	}

	ics, err := h.calendarService.ExportICS(ctx, ownerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ics))
}

func baseURL(r *http.Request) string {
	if base := os.Getenv("BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}
