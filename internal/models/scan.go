package models

import "time"

// AnalysisResult is the normalized verdict returned to the scanner UI.
type AnalysisResult struct {
	IsHalal            bool     `json:"is_halal"`
	Confidence         int      `json:"confidence"`
	Reason             string   `json:"reason"`
	IngredientsConcern []string `json:"ingredients_concern"`
	Recommendation     string   `json:"recommendation"`
	ProductName        string   `json:"product_name,omitempty"`
}

// ScanHistory records one scan. AnalysisResult holds the serialized
// normalized result.
type ScanHistory struct {
	ID                   int64     `json:"id"`
	ProductName          *string   `json:"productName,omitempty"`
	ImageURL             *string   `json:"imageUrl,omitempty"`
	IsHalal              bool      `json:"isHalal"`
	Confidence           int       `json:"confidence"`
	AnalysisResult       string    `json:"analysisResult"`
	Reason               *string   `json:"reason,omitempty"`
	ConcernedIngredients []string  `json:"concernedIngredients,omitempty"`
	Recommendation       *string   `json:"recommendation,omitempty"`
	Language             Language  `json:"language"`
	CreatedAt            time.Time `json:"createdAt"`
}
