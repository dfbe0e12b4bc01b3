package models

import "time"

type Account struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	CurrencyCode string    `json:"currencySymCode" db:"curr_sym_code" example:"USD"`
	CreationTime time.Time `json:"creationTime" db:"creation_time"`
	Description  string    `json:"description,omitempty" db:"description"`
}

// AccountPrototype describes an account to be created. A zero CreationTime means now.
type AccountPrototype struct {
	CurrencyCode string     `json:"currencySymCode" validate:"required,len=3,uppercase" example:"USD"`
	CreationTime *time.Time `json:"creationTime,omitempty"`
	Description  string     `json:"description,omitempty" validate:"max=4096"`
}
