package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumina-health-api/models"
	"lumina-health-api/wellness"
)

func analyzeMood(c *gin.Context) {
	var in models.ImageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderValidation(c, bodyErrors(err))
		return
	}
	c.JSON(http.StatusOK, wellness.AnalyzeMood(*in.ImageURL))
}

func diagnoseImage(c *gin.Context) {
	var in models.ImageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderValidation(c, bodyErrors(err))
		return
	}
	c.JSON(http.StatusOK, wellness.Diagnose(*in.ImageURL))
}

func chat(c *gin.Context) {
	var in models.ChatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderValidation(c, bodyErrors(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": wellness.Reply(*in.Message)})
}

func nutrition(c *gin.Context) {
	var in models.NutritionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderValidation(c, bodyErrors(err))
		return
	}
	c.JSON(http.StatusOK, wellness.EstimateNutrition(*in.Text))
}

func youtubeRecs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"videos": wellness.Videos()})
}
