package model

import "github.com/erazemk/labstock/internal/status"

// CheckRecord is one observed quantity of one item by one group on one date.
type CheckRecord struct {
	ID        int64         `json:"id"`
	ItemID    int64         `json:"item_id"`
	GroupName string        `json:"group_name"`
	CheckedBy string        `json:"checked_by"`
	Quantity  string        `json:"quantity"`
	Status    status.Status `json:"status"`
	Note      string        `json:"note"`
	CheckDate string        `json:"check_date"`
	CreatedAt string        `json:"created_at"`
}

// CheckRow is a check record joined with its item, as shown in history and
// exports.
type CheckRow struct {
	CheckRecord
	ItemName   string `json:"item_name"`
	StockPlace string `json:"stock_place"`
	Minimum    string `json:"minimum"`
	SortOrder  int    `json:"-"`
}

// CheckEntry is a single submitted quantity.
type CheckEntry struct {
	ItemID   int64  `json:"item_id"`
	Quantity string `json:"quantity"`
	Note     string `json:"note"`
}

// Submission is one group's stock check for one date.
type Submission struct {
	GroupName string       `json:"group_name"`
	CheckedBy string       `json:"checked_by"`
	CheckDate string       `json:"check_date"`
	Entries   []CheckEntry `json:"entries"`
}

// CheckKey identifies the latest record of an item for a group.
type CheckKey struct {
	ItemID    int64
	GroupName string
}
