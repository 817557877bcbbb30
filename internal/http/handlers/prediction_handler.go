package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/ml"
)

type PredictionHandler struct {
	ML *ml.Client
}

// POST /predictions — authenticated; proxies the price-prediction service.
func (h *PredictionHandler) Predict(c *fiber.Ctx) error {
	var body ml.PredictionRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.CropType == "" || body.Region == "" || body.Season == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing required fields: cropType, region, season")
	}
	prediction, err := h.ML.PredictPrices(c.Context(), body)
	if err != nil {
		applog.Error(c, "predictions.fail", err, map[string]any{"crop": body.CropType})
		return jsonError(c, fiber.StatusInternalServerError, "Failed to generate prediction")
	}
	return c.JSON(fiber.Map{"prediction": prediction})
}

// GET /predictions?cropType=...
func (h *PredictionHandler) Insights(c *fiber.Ctx) error {
	cropType := c.Query("cropType")
	if cropType == "" {
		return jsonError(c, fiber.StatusBadRequest, "Crop type is required")
	}
	insights, err := h.ML.MarketInsights(c.Context(), cropType)
	if err != nil {
		applog.Error(c, "predictions.insights.fail", err, map[string]any{"crop": cropType})
		return jsonError(c, fiber.StatusInternalServerError, "Failed to get market insights")
	}
	return c.JSON(fiber.Map{"insights": insights})
}
