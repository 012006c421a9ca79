// models.go
package model

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusOnTheWay  Status = "ON_THE_WAY"
	StatusArrived   Status = "ARRIVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Estados válidos del enum. ACCEPTED solo se asigna por acción explícita (PATCH status).
var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusAccepted:  true,
	StatusOnTheWay:  true,
	StatusArrived:   true,
	StatusCompleted: true,
	StatusCancelled: true,
}

func (s Status) Valid() bool {
	return validStatuses[s]
}

// Terminal indica que ya no hay movimiento ni cambios de estado.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Coordinate en grados decimales. No se valida el rango.
type Coordinate struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// GeoPoint es un Point GeoJSON: coordinates = [lng, lat].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(c Coordinate) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{c.Lng, c.Lat}}
}

// Coordinate convierte el punto GeoJSON de vuelta a lat/lng.
func (p GeoPoint) Coordinate() Coordinate {
	if len(p.Coordinates) < 2 {
		return Coordinate{}
	}
	return Coordinate{Lat: p.Coordinates[1], Lng: p.Coordinates[0]}
}

type Garage struct {
	ID            string   `bson:"_id" json:"id"`
	Name          string   `bson:"name" json:"name"`
	Address       string   `bson:"address" json:"address"`
	Location      GeoPoint `bson:"location" json:"location"`
	Geohash       string   `bson:"geohash" json:"geohash,omitempty"`
	Phone         string   `bson:"phone" json:"phone"`
	Rating        float64  `bson:"rating" json:"rating"`
	EstimatedCost string   `bson:"estimated_cost" json:"estimatedCost"`
	Specialties   []string `bson:"specialties" json:"specialties"`
	IsAvailable   bool     `bson:"is_available" json:"isAvailable"`
}

// GarageSummary es la parte del taller que viaja con la orden.
type GarageSummary struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type VehicleDetails struct {
	Make  string `bson:"make" json:"make"`
	Model string `bson:"model" json:"model"`
	Year  string `bson:"year" json:"year"`
	Issue string `bson:"issue" json:"issue"`
}

type Order struct {
	ID               string         `bson:"_id" json:"id"`
	UserID           string         `bson:"user_id" json:"userId"`
	GarageID         string         `bson:"garage_id" json:"garageId"`
	Garage           GarageSummary  `bson:"garage" json:"garage"`
	Status           Status         `bson:"status" json:"status"`
	UserLocation     Coordinate     `bson:"user_location" json:"userLocation"`
	MechanicLocation Coordinate     `bson:"mechanic_location" json:"mechanicLocation"`
	VehicleDetails   VehicleDetails `bson:"vehicle_details" json:"vehicleDetails"`
	TotalAmount      *float64       `bson:"total_amount,omitempty" json:"totalAmount,omitempty"`
	History          []StatusRecord `bson:"history" json:"history"`
	Version          int64          `bson:"version" json:"version"`
	CreatedAt        time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updatedAt"`
}

type StatusRecord struct {
	Status    Status    `bson:"status" json:"status"`
	Reason    string    `bson:"reason" json:"reason"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Clone devuelve una copia profunda; los repos nunca comparten punteros con el llamador.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.TotalAmount != nil {
		v := *o.TotalAmount
		c.TotalAmount = &v
	}
	if o.History != nil {
		c.History = make([]StatusRecord, len(o.History))
		copy(c.History, o.History)
	}
	return &c
}

// SetStatus cambia el estado y deja registro en el historial.
func (o *Order) SetStatus(s Status, reason string, at time.Time) {
	o.Status = s
	o.History = append(o.History, StatusRecord{Status: s, Reason: reason, Timestamp: at})
	o.UpdatedAt = at
}

func (g Garage) Clone() Garage {
	c := g
	c.Location.Coordinates = append([]float64(nil), g.Location.Coordinates...)
	c.Specialties = append([]string(nil), g.Specialties...)
	return c
}
