package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rannerhq/ranner/internal/service/offers"
)

type OfferHandler struct {
	service offers.OfferUseCase
}

type searchQuery struct {
	Origin        string `form:"origin" binding:"required"`
	Destination   string `form:"destination" binding:"required"`
	DepartureDate string `form:"departureDate" binding:"required"`
	ReturnDate    string `form:"returnDate"`
	Adults        string `form:"adults"`
	Currency      string `form:"currency"`
}

func (q searchQuery) criteria() offers.SearchCriteria {
	return offers.SearchCriteria{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartureDate,
		ReturnDate:    q.ReturnDate,
		Adults:        q.Adults,
		Currency:      q.Currency,
	}
}

func NewOfferHandler(service offers.OfferUseCase) *OfferHandler {
	return &OfferHandler{service: service}
}

func (h *OfferHandler) Register(router *gin.RouterGroup) {
	router.GET("/offers", h.searchOffers)
	router.POST("/offers", h.searchOffersRaw)
	router.GET("/offers/price", h.priceConfirmedOffer)
	router.POST("/offers/price", h.priceOffersRaw)
	router.GET("/offers/prediction", h.predictOffers)
	router.POST("/offers/upselling", h.upsellOffers)
	router.GET("/seatmaps", h.seatMapForCriteria)
	router.POST("/availabilities", h.searchAvailabilities)
	router.POST("/orders", h.createOrder)
	router.GET("/orders/:id", h.getOrder)
	router.DELETE("/orders/:id", h.cancelOrder)
	router.GET("/orders/:id/seatmap", h.seatMapForOrder)
	router.GET("/destinations", h.searchDestinations)
	router.GET("/dates", h.searchOfferDates)
	router.GET("/airport-suggestions", h.airportSuggestions)
	router.GET("/airline/checkinLinks", h.checkinLinks)
	router.GET("/status", h.flightStatus)
}

func (h *OfferHandler) searchOffers(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err.Error())
		return
	}

	results, err := h.service.SearchOffers(c.Request.Context(), query.criteria())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *OfferHandler) searchOffersRaw(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "request body is required")
		return
	}

	result, err := h.service.SearchOffersRaw(c.Request.Context(), body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

func (h *OfferHandler) priceConfirmedOffer(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err.Error())
		return
	}

	priced, err := h.service.PriceConfirmedOffer(c.Request.Context(), query.criteria())
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", priced)
}

func (h *OfferHandler) priceOffersRaw(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "request body is required")
		return
	}

	priced, err := h.service.PriceOffersRaw(c.Request.Context(), body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", priced)
}

func (h *OfferHandler) predictOffers(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err.Error())
		return
	}

	prediction, err := h.service.PredictOffers(c.Request.Context(), query.criteria())
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", prediction)
}

func (h *OfferHandler) upsellOffers(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "request body is required")
		return
	}

	upsell, err := h.service.UpsellOffers(c.Request.Context(), body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", upsell)
}

func (h *OfferHandler) seatMapForCriteria(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err.Error())
		return
	}

	seatmaps, err := h.service.SeatMapForCriteria(c.Request.Context(), query.criteria())
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", seatmaps)
}

func (h *OfferHandler) seatMapForOrder(c *gin.Context) {
	seatmaps, err := h.service.SeatMapForOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", seatmaps)
}

func (h *OfferHandler) searchAvailabilities(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "request body is required")
		return
	}

	availabilities, err := h.service.SearchAvailabilities(c.Request.Context(), body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", availabilities)
}

func (h *OfferHandler) createOrder(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "request body is required")
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusCreated, "application/json", order)
}

func (h *OfferHandler) getOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", order)
}

func (h *OfferHandler) cancelOrder(c *gin.Context) {
	if err := h.service.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OfferHandler) searchDestinations(c *gin.Context) {
	origin := c.Query("origin")
	if origin == "" {
		badRequest(c, "origin is required")
		return
	}

	destinations, err := h.service.SearchDestinations(c.Request.Context(), origin)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", destinations)
}

func (h *OfferHandler) searchOfferDates(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		badRequest(c, "origin and destination are required")
		return
	}

	dates, err := h.service.SearchOfferDates(c.Request.Context(), origin, destination)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", dates)
}

func (h *OfferHandler) airportSuggestions(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		badRequest(c, "keyword is required")
		return
	}

	suggestions, err := h.service.AirportSuggestions(c.Request.Context(), keyword)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", suggestions)
}

func (h *OfferHandler) checkinLinks(c *gin.Context) {
	airlineCode := c.Query("airlineCode")
	if airlineCode == "" {
		badRequest(c, "airlineCode is required")
		return
	}

	links, err := h.service.CheckinLinks(c.Request.Context(), airlineCode)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", links)
}

func (h *OfferHandler) flightStatus(c *gin.Context) {
	carrierCode := c.Query("carrierCode")
	flightNumber := c.Query("flightNumber")
	departureDate := c.Query("scheduledDepartureDate")
	if carrierCode == "" || flightNumber == "" || departureDate == "" {
		badRequest(c, "carrierCode, flightNumber and scheduledDepartureDate are required")
		return
	}

	status, err := h.service.FlightStatus(c.Request.Context(), carrierCode, flightNumber, departureDate)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", status)
}
