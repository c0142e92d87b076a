package controllers

import (
	"net/http"

	"hotel-reservation/middleware"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type MaintenanceRequest struct {
	On *bool `json:"on" binding:"required"`
}

type RoomController struct {
	rooms        *services.RoomService
	oracle       *services.AvailabilityOracle
	reservations *services.ReservationService
}

func NewRoomController(rooms *services.RoomService, oracle *services.AvailabilityOracle, reservations *services.ReservationService) *RoomController {
	return &RoomController{rooms: rooms, oracle: oracle, reservations: reservations}
}

func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.rooms.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	room, err := rc.rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// dateRange reads ?start=&end= as calendar days.
func dateRange(c *gin.Context) (start, end string, ok bool) {
	start, end = c.Query("start"), c.Query("end")
	if _, err := utils.ParseDate(start); err != nil {
		badRequest(c, err)
		return "", "", false
	}
	if _, err := utils.ParseDate(end); err != nil {
		badRequest(c, err)
		return "", "", false
	}
	return start, end, true
}

func (rc *RoomController) Available(c *gin.Context) {
	rawStart, rawEnd, ok := dateRange(c)
	if !ok {
		return
	}
	start, _ := utils.ParseDate(rawStart)
	end, _ := utils.ParseDate(rawEnd)
	rooms, err := rc.oracle.ListAvailable(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (rc *RoomController) Quote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rawStart, rawEnd, ok := dateRange(c)
	if !ok {
		return
	}
	start, _ := utils.ParseDate(rawStart)
	end, _ := utils.ParseDate(rawEnd)
	q, err := rc.reservations.Quote(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, q)
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var in services.RoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	room, err := rc.rooms.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.RoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	room, err := rc.rooms.Update(c.Request.Context(), middleware.ActorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.rooms.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

func (rc *RoomController) SetMaintenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	room, err := rc.rooms.SetMaintenance(c.Request.Context(), middleware.ActorFrom(c), id, *req.On)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) Recompute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	changed, err := rc.rooms.RecomputeStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"changed": changed})
}

func (rc *RoomController) Stats(c *gin.Context) {
	stats, err := rc.rooms.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}
