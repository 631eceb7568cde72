package bulkimport

// Row adalah satu baris sheet setelah dibaca; semua sel masih berupa string.
type Row struct {
	RowNumber    int    `json:"row"`
	EmployeeCode string `json:"employee_code" validate:"required,max=50"`
	Name         string `json:"nama" validate:"required,max=150"`
	Position     string `json:"posisi" validate:"required"`
	ManagerCode  string `json:"atasan_code" validate:"omitempty,max=50"`
	BirthDate    string `json:"tgl_lahir" validate:"omitempty,datetime=2006-01-02"`
	Margin       string `json:"margin"`
	NA           string `json:"na"`
	Email        string `json:"email" validate:"omitempty,email"`
}

type RowError struct {
	Row    int    `json:"row"`
	Code   string `json:"employee_code,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Result struct {
	IsValid            bool       `json:"is_valid"`
	TotalRows          int        `json:"total_rows"`
	Errors             []RowError `json:"errors"`
	CircularReferences [][]string `json:"circular_references"`
	Warnings           []RowError `json:"warnings"`
	ValidRows          []int      `json:"valid_rows"`
}

type ImportRequest struct {
	Year    int  `form:"year" binding:"required,min=2000,max=2100"`
	Month   int  `form:"month" binding:"required,min=1,max=12"`
	DryRun  bool `form:"dry_run"`
	Partial bool `form:"partial"`
}

type ImportResponse struct {
	Validation        Result `json:"validation"`
	Committed         bool   `json:"committed"`
	EmployeesUpserted int    `json:"employees_upserted"`
	ManagerLinks      int    `json:"manager_links"`
	PerformanceRows   int    `json:"performance_rows"`
	SkippedRows       []int  `json:"skipped_rows,omitempty"`
}
