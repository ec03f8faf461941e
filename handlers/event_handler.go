package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gameplanAPI/internal/types/event"
	"gameplanAPI/middleware"
	"gameplanAPI/services"
)

type EventHandler struct {
	eventService  *services.EventService
	accessService *services.AccessService
	loc           *time.Location
}

func NewEventHandler(eventService *services.EventService, accessService *services.AccessService, loc *time.Location) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		accessService: accessService,
		loc:           loc,
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req event.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.eventService.CreateEvent(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetEvent returns the event detail, provided the viewer may see the owner's
// calendar. A denied viewer gets an empty 204, not a 403: the detail page is
// reached from grids the viewer could already see, so an explicit "forbidden"
// would only leak that the event still exists.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	ev, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		respondWithServiceError(w, err)
		return
	}

	viewerID, _ := middleware.GetUserID(ctx)
	cap := middleware.GetCapability(ctx)

	grant, err := h.accessService.CanViewEvent(ctx, viewerID, ev.UserID, cap)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !grant.Allowed() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondWithJSON(w, http.StatusOK, event.EventDetailResponse{
		Event:    ev,
		IsFriend: grant == services.GrantFriend,
		OwnerID:  ev.UserID.String(),
	})
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err := h.eventService.DeleteEvent(ctx, eventID, userID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// TodayEvents returns the viewer's own events for today, grouped by game.
func (h *EventHandler) TodayEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	events, err := h.eventService.EventsOn(ctx, userID, time.Now().In(h.loc))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, services.GroupTodayEvents(events))
}
