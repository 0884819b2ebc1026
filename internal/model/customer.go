package model

import "time"

// Address is a customer's mailing address.
type Address struct {
	Street  string `json:"street"`
	AptUnit string `json:"apt_unit,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Customer is a loyalty-program member looked up by support agents.
type Customer struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	ExtraCareID    string    `json:"extracare_id,omitempty"`
	AccountCreated Date      `json:"account_created,omitzero"`
	Address        Address   `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
}

// FullName returns "First Last".
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
