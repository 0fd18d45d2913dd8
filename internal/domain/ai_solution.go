package domain

// LocalizedText is an English/Arabic pair.
type LocalizedText struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// OfficialLink points at an authoritative government resource.
type OfficialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AISolution is a generated, unverified remediation plan. It is replaced whole on regeneration.
type AISolution struct {
	Explanation       string          `json:"explanation"`
	ExplanationAr     string          `json:"explanationAr"`
	Steps             []LocalizedText `json:"steps"`
	Documents         []LocalizedText `json:"documents"`
	OfficialLinks     []OfficialLink  `json:"officialLinks"`
	Recommendation    string          `json:"recommendation"`
	RecommendationAr  string          `json:"recommendationAr"`
	CanBeSolvedOnline bool            `json:"canBeSolvedOnline"`
	RequiresBranch    bool            `json:"requiresBranch"`
}

// Clone returns a deep copy.
func (s *AISolution) Clone() *AISolution {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Steps = append([]LocalizedText(nil), s.Steps...)
	cp.Documents = append([]LocalizedText(nil), s.Documents...)
	cp.OfficialLinks = append([]OfficialLink(nil), s.OfficialLinks...)
	return &cp
}
