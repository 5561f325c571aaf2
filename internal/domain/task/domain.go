package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Scope string

const (
	ScopeAll        Scope = "ALL"
	ScopeUnassigned Scope = "UNASSIGNED"
	ScopeMine       Scope = "MY"
)

type TaskType struct {
	TaskTypeID   int
	TaskTypeName string
	TaskTypeCode string
	IsActive     bool
}

type SetActiveTypes struct {
	ActiveTaskTypeIDs []int
	UpdatedByUserID   int64
}

type Insert struct {
	TaskTypeID          int
	TransactionID       int64
	Status              string
	HandledByUserID     int64
	Subject             string
	Description         string
	AssignedToUserID    *int64
	Priority            *string
	Reminder            bool
	CallDurationSeconds *int32
	Location            *string
	ChainID             *int64
}

type Update struct {
	TaskID              int64
	Status              string
	Subject             string
	Description         string
	AssignedToUserID    *int64
	Priority            *string
	Reminder            bool
	CallDurationSeconds *int32
	Location            *string
}

type Comment struct {
	TaskID  int64
	UserID  int64
	Comment string
}

// Base holds the columns every task listing returns.
type Base struct {
	TaskID          int64     `db:"task_id" json:"taskId"`
	TaskTypeID      int       `db:"task_type_id" json:"taskTypeId"`
	TaskPrefix      string    `db:"task_prefix" json:"taskPrefix"`
	ChainID         *int64    `db:"chain_id" json:"chainId"`
	TransactionID   *int64    `db:"transaction_id" json:"transactionId"`
	Status          string    `db:"status" json:"status"`
	HandledByUserID *int64    `db:"handled_by_user_id" json:"handledByUserId"`
	Subject         string    `db:"subject" json:"subject"`
	Description     string    `db:"description" json:"description"`
	Priority        *string   `db:"priority" json:"priority"`
	Reminder        bool      `db:"reminder" json:"reminder"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type Unassigned struct {
	Base
}

type Mine struct {
	Base
	AssignedToUserID *int64 `db:"assigned_to_user_id" json:"assignedToUserId"`
}

type Detailed struct {
	Mine
	CallDurationSeconds *int32  `db:"call_duration_seconds" json:"callDurationSeconds"`
	Location            *string `db:"location" json:"location"`
}

type TraderRef struct {
	TraderCode  *string `db:"trader_code" json:"traderCode"`
	TraderName  *string `db:"trader_name" json:"traderName"`
	TraderTim   *string `db:"trader_tim" json:"traderTim"`
	TraderEmail *string `db:"trader_email" json:"traderEmail"`
}

// Filtered nests the trader columns under "trader" in JSON.
type Filtered struct {
	Detailed
	TraderRef `json:"trader"`
}

type SearchTraderRef struct {
	TraderCode  *string `db:"trader_code" json:"traderCode"`
	TraderName  *string `db:"company_name" json:"traderName"`
	TraderTim   *string `db:"tim_number" json:"traderTim"`
	TraderEmail *string `db:"email" json:"traderEmail"`
}

type Found struct {
	Detailed
	SearchTraderRef
}

type CommentRow struct {
	CommentID int64     `db:"comment_id" json:"commentId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	LeftText  *string   `db:"left_text" json:"leftText"`
	RightText *string   `db:"right_text" json:"rightText"`
}

type ClientOption struct {
	TraderID    int64  `db:"trader_id" json:"traderId"`
	TraderCode  string `db:"trader_code" json:"traderCode"`
	CompanyName string `db:"company_name" json:"companyName"`
	TimNumber   string `db:"tim_number" json:"timNumber"`
}

type MyStats struct {
	TotalTasks    int64 `db:"total_tasks" json:"totalTasks"`
	AssignedToday int64 `db:"assigned_today" json:"assignedToday"`
	TotalUrgent   int64 `db:"total_urgent" json:"totalUrgent"`
}

type Filter struct {
	TaskID            *int64
	TaskTypeID        *int
	DateFrom          *time.Time
	DateTo            *time.Time
	Priority          *string
	Status            *string
	ClientCodePrefix  *string
	ClientNamePrefix  *string
	ClientTimPrefix   *string
	ClientEmailPrefix *string
}

type Search struct {
	Filter
	Scope  Scope
	Search *string
}
