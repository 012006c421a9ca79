package service

import (
	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/model"
)

// Ubicación por defecto del cliente (San Francisco) cuando no llega ninguna.
var DefaultUserLocation = model.Coordinate{Lat: 37.78825, Lng: -122.4324}

// Orden sintetizada cuando se trackea un id desconocido sin store persistente.
var (
	placeholderUserLocation     = model.Coordinate{Lat: 37.78825, Lng: -122.4324}
	placeholderMechanicLocation = model.Coordinate{Lat: 37.77825, Lng: -122.4224}
	placeholderGarage           = model.GarageSummary{Name: "Quick Fix Motors", Phone: "+15550123"}
	placeholderVehicle          = model.VehicleDetails{Make: "Tesla", Model: "Model Y"}
)

// Desplazamiento inicial del mecánico cuando el taller no se encuentra (modo demo).
const mockMechanicOffset = 0.01

func garage(id, name, address string, lat, lng float64, phone string, rating float64, cost string, specialties ...string) model.Garage {
	loc := model.Coordinate{Lat: lat, Lng: lng}
	return model.Garage{
		ID:            id,
		Name:          name,
		Address:       address,
		Location:      model.NewGeoPoint(loc),
		Geohash:       geo.Cell(loc, geo.CellPrecision),
		Phone:         phone,
		Rating:        rating,
		EstimatedCost: cost,
		Specialties:   specialties,
		IsAvailable:   true,
	}
}

// FallbackGarages es la lista fija que se devuelve cuando no hay coordenadas o el store falla.
func FallbackGarages() []model.Garage {
	return []model.Garage{
		garage("1", "Quick Fix Motors", "123 Auto Lane, Metropolis", 37.78825, -122.4324, "+15550123", 4.8, "$20 - $100", "Engine", "Electrical"),
		garage("2", "Elite Auto Care", "456 Service Blvd, Metropolis", 37.78925, -122.4344, "+15550456", 4.5, "$30 - $150", "Tyre", "Alignment"),
	}
}

// SeedGarages son los talleres que carga POST /garages/seed.
func SeedGarages() []model.Garage {
	return append(FallbackGarages(),
		garage("3", "Master Mechanics", "789 Repair Rd, Metropolis", 37.78725, -122.4364, "+15550789", 4.9, "$15 - $80", "Battery", "Fuel"),
	)
}
