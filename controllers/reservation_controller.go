package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"hotel-reservation/middleware"
	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateReservationRequest struct {
	ClientID  uint   `json:"clientId"`
	RoomID    uint   `json:"roomId" binding:"required"`
	StartDate string `json:"startDate" binding:"required,isodate"`
	EndDate   string `json:"endDate" binding:"required,isodate"`
}

type AttachServicesRequest struct {
	ServiceIDs []uint `json:"serviceIds"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

type PayRequest struct {
	Method string `json:"method" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type ReservationController struct {
	svc    *services.ReservationService
	logger *zap.SugaredLogger
}

func NewReservationController(svc *services.ReservationService, logger *zap.SugaredLogger) *ReservationController {
	return &ReservationController{svc: svc, logger: logger}
}

// authorize loads the reservation and lets through staff holding staffCap,
// or the client that owns it when it holds ownCap.
func (rc *ReservationController) authorize(c *gin.Context, staffCap, ownCap services.Capability) (uint, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return 0, false
	}
	actor := middleware.ActorFrom(c)
	if services.Can(actor.Role, staffCap) {
		return id, true
	}
	r, err := rc.svc.Get(c.Request.Context(), id)
	if err == nil {
		err = services.CheckAccess(actor, r, staffCap, ownCap)
	}
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}

func (rc *ReservationController) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	actor := middleware.ActorFrom(c)
	if actor.Role == services.RoleClient {
		req.ClientID = actor.ClientID
	}
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)

	r, err := rc.svc.Create(c.Request.Context(), actor, services.CreateReservationInput{
		ClientID:  req.ClientID,
		RoomID:    req.RoomID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, r)
}

// List supports ?status=A,B, ?roomId=, ?clientId= and ?from=&to=.
func (rc *ReservationController) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []models.Reservation
		err  error
	)
	switch {
	case c.Query("roomId") != "":
		id, perr := strconv.ParseUint(c.Query("roomId"), 10, 64)
		if perr != nil {
			badRequest(c, perr)
			return
		}
		list, err = rc.svc.ListByRoom(ctx, uint(id))
	case c.Query("clientId") != "":
		id, perr := strconv.ParseUint(c.Query("clientId"), 10, 64)
		if perr != nil {
			badRequest(c, perr)
			return
		}
		list, err = rc.svc.ListByClient(ctx, uint(id))
	case c.Query("from") != "" || c.Query("to") != "":
		from, ferr := utils.ParseDate(c.Query("from"))
		to, terr := utils.ParseDate(c.Query("to"))
		if ferr != nil || terr != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.validation", "from and to must be YYYY-MM-DD")
			return
		}
		list, err = rc.svc.ListByPeriod(ctx, from, to)
	default:
		var statuses []models.ReservationStatus
		for _, s := range strings.Split(c.Query("status"), ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				statuses = append(statuses, models.ReservationStatus(s))
			}
		}
		list, err = rc.svc.List(ctx, statuses...)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// Stats serves the reservation half of the dashboard; rooms have their own.
func (rc *ReservationController) Stats(c *gin.Context) {
	stats, err := rc.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

func (rc *ReservationController) Mine(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.ClientID == 0 {
		forbidden(c, "no client identity on request")
		return
	}
	list, err := rc.svc.ListByClient(c.Request.Context(), actor.ClientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (rc *ReservationController) Get(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapViewAll, "")
	if !ok {
		return
	}
	r, err := rc.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"reservation": r, "total": r.TotalWithDiscount()})
}

func (rc *ReservationController) AttachServices(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapManageStay, "")
	if !ok {
		return
	}
	var req AttachServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rc.svc.AttachServices(c.Request.Context(), middleware.ActorFrom(c), id, req.ServiceIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, r)
}

func (rc *ReservationController) ApplyDiscount(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapManageStay, "")
	if !ok {
		return
	}
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rc.svc.ApplyDiscount(c.Request.Context(), middleware.ActorFrom(c), id, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, r)
}

func (rc *ReservationController) RemoveDiscount(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapManageStay, "")
	if !ok {
		return
	}
	r, err := rc.svc.RemoveDiscount(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, r)
}

func (rc *ReservationController) Pay(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapManageStay, "")
	if !ok {
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	method, err := services.ParsePaymentMethod(req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := rc.svc.Pay(c.Request.Context(), middleware.ActorFrom(c), id, method)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, r)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	id, ok := rc.authorize(c, services.CapCancelAny, services.CapCancelOwn)
	if !ok {
		return
	}
	r, err := rc.svc.Cancel(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, r)
}

// staffOp wraps the staff-only transitions that take nothing but the id.
func (rc *ReservationController) staffOp(op func(s *services.ReservationService, c *gin.Context, actor services.Actor, id uint) (*models.Reservation, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		r, err := op(rc.svc, c, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, r)
	}
}

func (rc *ReservationController) CheckIn() gin.HandlerFunc {
	return rc.staffOp(func(s *services.ReservationService, c *gin.Context, a services.Actor, id uint) (*models.Reservation, error) {
		return s.CheckIn(c.Request.Context(), a, id)
	})
}

func (rc *ReservationController) CheckOut() gin.HandlerFunc {
	return rc.staffOp(func(s *services.ReservationService, c *gin.Context, a services.Actor, id uint) (*models.Reservation, error) {
		return s.CheckOut(c.Request.Context(), a, id)
	})
}

func (rc *ReservationController) Finalize() gin.HandlerFunc {
	return rc.staffOp(func(s *services.ReservationService, c *gin.Context, a services.Actor, id uint) (*models.Reservation, error) {
		return s.Finalize(c.Request.Context(), a, id)
	})
}

func (rc *ReservationController) Archive() gin.HandlerFunc {
	return rc.staffOp(func(s *services.ReservationService, c *gin.Context, a services.Actor, id uint) (*models.Reservation, error) {
		return s.Archive(c.Request.Context(), a, id)
	})
}

func (rc *ReservationController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.svc.HardDelete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
