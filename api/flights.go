package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rannerhq/ranner/internal/auth"
	"github.com/rannerhq/ranner/internal/repository"
	"github.com/rannerhq/ranner/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	TripID        string `json:"trip_id" binding:"required"`
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date"`
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flight_number"`
	PriceAmount   string `json:"price_amount"`
	PriceCurrency string `json:"price_currency"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register mounts the saved-flight CRUD routes. Mutations require an
// authenticated caller; reads do not.
func (h *FlightHandler) Register(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	router.POST("", authRequired, h.create)
	router.GET("", h.list)
	router.GET("/trip/:tripId", h.listByTrip)
	router.DELETE("/:id", authRequired, h.remove)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	departure, err := parseDate(req.DepartureDate)
	if err != nil {
		badRequest(c, "invalid departure_date")
		return
	}
	var returnDate *time.Time
	if req.ReturnDate != "" {
		parsed, err := parseDate(req.ReturnDate)
		if err != nil {
			badRequest(c, "invalid return_date")
			return
		}
		returnDate = &parsed
	}

	identity, _ := auth.FromContext(c)

	flight, err := h.service.Save(c.Request.Context(), flights.SaveFlightInput{
		TripID:        req.TripID,
		Owner:         identity.Username,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: departure,
		ReturnDate:    returnDate,
		Airline:       req.Airline,
		FlightNumber:  req.FlightNumber,
		PriceAmount:   req.PriceAmount,
		PriceCurrency: req.PriceCurrency,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flight)
}

// list answers GET /flights?id=&tripId=. No filter means every record;
// nothing matching is an empty array, not an error.
func (h *FlightHandler) list(c *gin.Context) {
	filter := repository.Filter{
		ID:     c.Query("id"),
		TripID: c.Query("tripId"),
	}

	results, err := h.service.Find(c.Request.Context(), filter)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *FlightHandler) listByTrip(c *gin.Context) {
	results, err := h.service.ListByTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *FlightHandler) remove(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "authentication required", "status": http.StatusUnauthorized}})
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), identity); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
