package controller

import (
	"errors"
	"net/http"
	"strconv"

	"roadside-assist-service/internal/dto"
	"roadside-assist-service/internal/service"

	"github.com/gin-gonic/gin"
)

type GarageController struct {
	Garages   *service.GarageService
	Estimator *service.Estimator
}

func NewGarageController(garages *service.GarageService, estimator *service.Estimator) *GarageController {
	return &GarageController{Garages: garages, Estimator: estimator}
}

// GET /api/garages/nearby?lat=&lng=
// Coordenadas ausentes o mal formadas se tratan igual: lista fija (salvo modo estricto).
func (ctl *GarageController) Nearby(c *gin.Context) {
	res, err := ctl.Garages.Nearby(c.Request.Context(), queryFloat(c, "lat"), queryFloat(c, "lng"))
	if err != nil {
		if errors.Is(err, service.ErrMissingCoordinates) {
			fail(c, http.StatusBadRequest, "Please provide latitude and longitude")
			return
		}
		serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(res.Garages),
		"data":     res.Garages,
		"fallback": res.Fallback,
	})
}

// POST /api/garages/seed: protegido con AdminOnly
func (ctl *GarageController) Seed(c *gin.Context) {
	n, err := ctl.Garages.Seed(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "count": n, "message": "Garages seeded successfully"})
}

// GET /api/services
func (ctl *GarageController) Categories(c *gin.Context) {
	cats := ctl.Estimator.Categories()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cats), "data": cats})
}

// GET /api/towing
func (ctl *GarageController) Towing(c *gin.Context) {
	towing := ctl.Estimator.Towing()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(towing), "data": towing})
}

// POST /api/estimates
func (ctl *GarageController) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	est, err := ctl.Estimator.Estimate(req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) || errors.Is(err, service.ErrInvalidDistance) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": est})
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
