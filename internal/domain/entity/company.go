package entity

import "time"

// Company representa a organização dona de uma carteira de clientes.
type Company struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
