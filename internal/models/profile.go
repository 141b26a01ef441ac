package models

// CandidateProfile is what the analysis extracts from one résumé. Skills and Languages are
// normalized sets.
type CandidateProfile struct {
	Skills              []string
	Languages           []string
	ExperienceSentences []string
	ExperienceYears     float64
}

func (p CandidateProfile) HasExperience() bool {
	return len(p.ExperienceSentences) > 0
}

// MatchScore is the scoring of one offer against one profile.
type MatchScore struct {
	OfferID           string   `json:"offer_id"`
	Global            float64  `json:"global_score"`
	Text              float64  `json:"text"`
	Skills            float64  `json:"skills"`
	Languages         float64  `json:"languages"`
	Experience        float64  `json:"experience"`
	MatchingSkills    []string `json:"matching_skills"`
	MatchingLanguages []string `json:"matching_languages"`
}
