package models

type AnalyseRequest struct {
	Languages []string `json:"languages"`
}

type AnalysisResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// AnalysisResult is the outcome of one résumé analysis. Degraded lists the best-effort
// steps that failed and returned an empty value.
type AnalysisResult struct {
	Skills        []string     `json:"skills"`
	Duration      string       `json:"duration"`
	DurationYears float64      `json:"duration_years"`
	Countries     []string     `json:"countries"`
	Languages     []string     `json:"languages"`
	Experiences   []string     `json:"experiences"`
	Matches       []OfferMatch `json:"matches"`
	Degraded      []string     `json:"degraded,omitempty"`
}

type OfferMatch struct {
	Offer             OfferSummary `json:"offer"`
	GlobalScore       float64      `json:"global_score"`
	MatchingSkills    []string     `json:"matching_skills"`
	MatchingLanguages []string     `json:"matching_languages"`
	Detail            ScoreDetail  `json:"detail"`
}

type ScoreDetail struct {
	Text       float64 `json:"text"`
	Skills     float64 `json:"skills"`
	Languages  float64 `json:"languages"`
	Experience float64 `json:"experience"`
}

// OfferSummary is the part of an offer shown next to a match.
type OfferSummary struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	City            string   `json:"city"`
	Country         string   `json:"country,omitempty"`
	CompanyLocation string   `json:"company_location"`
	MinSalary       *float64 `json:"min_salary"`
	MaxSalary       *float64 `json:"max_salary"`
	SalaryCurrency  string   `json:"salary_currency"`
	SalaryPeriod    string   `json:"salary_period"`
	MinSalaryText   string   `json:"min_salary_text"`
	MaxSalaryText   string   `json:"max_salary_text"`
	ContractType    string   `json:"contract_type,omitempty"`
	WorkingTime     string   `json:"working_time,omitempty"`
	WorkMode        string   `json:"work_mode,omitempty"`
}

// CVMatch is the best résumé found for one offer by keyword matching.
type CVMatch struct {
	Offer     OfferSummary `json:"offer"`
	MatchedCV string       `json:"matched_cv"`
	Score     float64      `json:"score"`
}

type MatchOffersResponse struct {
	Matches []CVMatch `json:"matches"`
}
