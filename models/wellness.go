package models

// Pointer fields distinguish a missing value from an empty string: the field
// must be present but may be blank.

type ImageInput struct {
	ImageURL *string `json:"image_url" binding:"required"`
}

type ChatInput struct {
	Message *string  `json:"message" binding:"required"`
	Context []string `json:"context"`
}

type NutritionInput struct {
	Text *string `json:"text" binding:"required"`
}
