package model

type ServiceCategory struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	BasePrice float64 `json:"basePrice"`
}

type TowingService struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	CostPerKm    string `json:"costPerKm"`
	Availability string `json:"availability"`
	Phone        string `json:"phone"`
}
