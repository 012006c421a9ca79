// dto.go
package dto

import "roadside-assist-service/internal/model"

// CreateOrderRequest usado por la API y por el consumer de Rabbit
type CreateOrderRequest struct {
	UserID         string               `json:"userId" binding:"required"`
	GarageID       string               `json:"garageId" binding:"required"`
	VehicleDetails model.VehicleDetails `json:"vehicleDetails"`
	UserLocation   *model.Coordinate    `json:"userLocation"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// EstimateRequest: si DistanceKm no viene se calcula desde From/To.
type EstimateRequest struct {
	CategoryID string            `json:"categoryId" binding:"required"`
	DistanceKm *float64          `json:"distanceKm"`
	From       *model.Coordinate `json:"from"`
	To         *model.Coordinate `json:"to"`
}

type EstimateResponse struct {
	CategoryID string  `json:"categoryId"`
	BasePrice  float64 `json:"basePrice"`
	DistanceKm float64 `json:"distanceKm"`
	Total      float64 `json:"total"`
}
