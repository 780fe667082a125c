package contract

type LeadResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	Category      string `json:"category"`
	BuildingSize  string `json:"building_size"`
	YearBuilt     string `json:"year_built"`
	Description   string `json:"description"`
	Source        string `json:"source"`
	LeadScore     int    `json:"lead_score"`
	AIAnalysis    string `json:"ai_analysis,omitempty"`
	ContactPerson string `json:"contact_person"`
	ContactTitle  string `json:"contact_title"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	Notes         string `json:"notes"`
	ScrapedAt     string `json:"scraped_at"`
}

// LeadQuery is bound from the query string of the list endpoint.
type LeadQuery struct {
	City     string `query:"city" validate:"omitempty,max=100"`
	State    string `query:"state" validate:"omitempty,statecode"`
	Category string `query:"category" validate:"omitempty,max=100"`
	MinScore int    `query:"min_score" validate:"gte=0,lte=100"`
	Limit    int    `query:"limit" validate:"gte=0,lte=500"`
	Offset   int    `query:"offset" validate:"gte=0"`
}

// UpdateLeadRequest patches the hand-maintained parts of a lead.
// Nil fields are left untouched.
type UpdateLeadRequest struct {
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=120"`
	ContactTitle  *string `json:"contact_title" validate:"omitempty,max=120"`
	ContactEmail  *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone  *string `json:"contact_phone" validate:"omitempty,max=40"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=40"`
	Website       *string `json:"website" validate:"omitempty,url"`
	BuildingSize  *string `json:"building_size" validate:"omitempty,max=80"`
	YearBuilt     *string `json:"year_built" validate:"omitempty,max=40"`
	Zipcode       *string `json:"zipcode" validate:"omitempty,zipcode"`
	Notes         *string `json:"notes" validate:"omitempty,max=5000"`
}

type StatsResponse struct {
	Companies      int64             `json:"companies"`
	AvgLeadScore   float64           `json:"avg_lead_score"`
	Cities         int64             `json:"cities"`
	Categories     int64             `json:"categories"`
	AIAnalyzed     int64             `json:"ai_analyzed"`
	Searches       int64             `json:"searches"`
	Exports        int64             `json:"exports"`
	RecentSearches []*SearchResponse `json:"recent_searches"`
}

type SearchResponse struct {
	SearchType   string `json:"search_type"`
	SearchTerm   string `json:"search_term"`
	City         string `json:"city"`
	State        string `json:"state"`
	ResultsCount int    `json:"results_count"`
	SearchedAt   string `json:"searched_at"`
}

type CacheClearResponse struct {
	Key     string `json:"key,omitempty"`
	Cleared bool   `json:"cleared"`
}
