package domain

import "time"

// Customer mirrors the platform's record for a registered payor plus the
// service metadata kept only locally.
type Customer struct {
	CustomerID     int64     `json:"customerId"`
	CustomerNumber string    `json:"customerNumber"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Company        string    `json:"company,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Zip            string    `json:"zip,omitempty"`
	ServiceType    string    `json:"serviceType,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
