package trader

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("trader not found")

// Insert is the positional payload of insert_client.
type Insert struct {
	CompanyName     string
	AccountType     *string
	TimNumber       string
	Language        *string
	Phone           string
	Email           string
	Address         string
	City            *string
	StateCountry    *string
	ZipCode         *string
	CreatedByUserID int64
}

// Update is the positional payload of update_trader.
type Update struct {
	TraderID     int64
	CompanyName  string
	TimNumber    string
	Phone        string
	Email        string
	Address      string
	City         *string
	StateCountry *string
	ZipCode      *string
	Language     *string
	AccountType  *string
	Status       *bool
}

type Trader struct {
	TraderID     int64     `db:"trader_id" json:"traderId"`
	TraderCode   string    `db:"trader_code" json:"traderCode"`
	CompanyName  string    `db:"company_name" json:"companyName"`
	AccountType  *string   `db:"account_type" json:"accountType"`
	TimNumber    string    `db:"tim_number" json:"timNumber"`
	Language     *string   `db:"language" json:"language"`
	Phone        string    `db:"phone" json:"phone"`
	Email        string    `db:"email" json:"email"`
	Address      string    `db:"address" json:"address"`
	City         *string   `db:"city" json:"city"`
	StateCountry *string   `db:"state_country" json:"stateCountry"`
	ZipCode      *string   `db:"zip_code" json:"zipCode"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Stats struct {
	TotalClients    int64 `db:"total_clients" json:"totalClients"`
	ActiveClients   int64 `db:"active_clients" json:"activeClients"`
	InactiveClients int64 `db:"inactive_clients" json:"inactiveClients"`
}

// Summary is the row shape of both filter functions.
type Summary struct {
	TraderID    int64     `db:"trader_id" json:"traderId"`
	TraderCode  string    `db:"trader_code" json:"traderCode"`
	CompanyName string    `db:"company_name" json:"companyName"`
	TimNumber   string    `db:"tim_number" json:"timNumber"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

const (
	DefaultFilterStatus = "ALL"
	DefaultFilterLimit  = 50
)

type Filter struct {
	Search      *string
	CodePrefix  *string
	NamePrefix  *string
	TimPrefix   *string
	EmailPrefix *string
	PhonePrefix *string
	Status      string
	Limit       int
	Offset      int
}
