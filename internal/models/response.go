package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Datasets  int    `json:"datasets"`
}

// DatasetResponse describes a loaded dataset
type DatasetResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Source         string   `json:"source"`
	Columns        []string `json:"columns"`
	Rows           int      `json:"rows"`
	DateColumn     string   `json:"date_column"`
	NumericColumns []string `json:"numeric_columns"`
	MinDate        string   `json:"min_date,omitempty"` // Format: YYYY-MM-DD
	MaxDate        string   `json:"max_date,omitempty"` // Format: YYYY-MM-DD
	LoadedAt       string   `json:"loaded_at"`
}

// DatasetListResponse represents list datasets response
type DatasetListResponse struct {
	Datasets []DatasetResponse `json:"datasets"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
