package models

// Monthly is the number of months in a year, the period the ratios are annualized over
const Monthly = 12

// StatisticsRequest is what the statistics endpoint and the compute command take
type StatisticsRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Save  bool   `json:"save"`
}

// SyncRequest is what the fetch command takes
type SyncRequest struct {
	Top      int    `json:"top"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Interval string `json:"interval"`
}

// SyncResponse summarizes a sync
type SyncResponse struct {
	Symbols      []string `json:"symbols"`
	Days         int      `json:"days"`
	RowsInserted int64    `json:"rowsInserted"`
	StoreFile    string   `json:"storeFile"`
}
