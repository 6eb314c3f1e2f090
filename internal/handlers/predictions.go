package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"livsoul/internal/models"
	"livsoul/internal/repository"
	"livsoul/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PredictionHandler struct {
	predictions *services.PredictionService
	log         *zap.Logger
}

func NewPredictionHandler(predictions *services.PredictionService, log *zap.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, log: log}
}

// predictionRequest mirrors the submitted form, which arrives flat.
// Numeric fields are typed any because clients send both numbers and
// numeric strings; coercion and presence checks happen field by field
// so the error response can name every offending field at once.
type predictionRequest struct {
	Age                   any      `json:"age"`
	Gender                string   `json:"gender"`
	AWaveAmplitude        any      `json:"aWaveAmplitude"`
	AWaveLatency          any      `json:"aWaveLatency"`
	BWaveAmplitude        any      `json:"bWaveAmplitude"`
	BWaveLatency          any      `json:"bWaveLatency"`
	FlickerAmplitude      any      `json:"flickerAmplitude"`
	FlickerLatency        any      `json:"flickerLatency"`
	OscillatoryPotentials any      `json:"oscillatoryPotentials"`
	Symptoms              []string `json:"symptoms"`
	RiskFactors           []string `json:"riskFactors"`
	AdditionalNotes       string   `json:"additionalNotes"`
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// parseSubmission validates and coerces a request into scoring input.
// The returned map lists every missing or non-numeric field.
func parseSubmission(req predictionRequest) (services.EvaluateInput, map[string]string) {
	problems := map[string]string{}
	var in services.EvaluateInput

	coerce := func(field string, raw any, required bool) float64 {
		if raw == nil {
			if required {
				problems[field] = "is required"
			}
			return 0
		}
		value, ok := toFloat(raw)
		if !ok {
			problems[field] = "must be a number"
			return 0
		}
		// ParseFloat accepts "NaN" and "Inf"; measurements must be
		// finite and cannot be negative.
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			problems[field] = "must be a non-negative number"
			return 0
		}
		return value
	}

	in.Patient.Age = int(coerce("age", req.Age, true))
	if req.Gender == "" {
		problems["gender"] = "is required"
	} else {
		in.Patient.Gender = models.Gender(req.Gender)
	}

	in.ErgParameters = models.ErgParameters{
		AWaveAmplitude: coerce("aWaveAmplitude", req.AWaveAmplitude, true),
		AWaveLatency:   coerce("aWaveLatency", req.AWaveLatency, true),
		BWaveAmplitude: coerce("bWaveAmplitude", req.BWaveAmplitude, true),
		BWaveLatency:   coerce("bWaveLatency", req.BWaveLatency, true),
		// Absent flicker/oscillatory readings default to 0, "not measured".
		FlickerAmplitude:      coerce("flickerAmplitude", req.FlickerAmplitude, false),
		FlickerLatency:        coerce("flickerLatency", req.FlickerLatency, false),
		OscillatoryPotentials: coerce("oscillatoryPotentials", req.OscillatoryPotentials, false),
	}
	in.Symptoms = req.Symptoms
	in.RiskFactors = req.RiskFactors
	in.Notes = req.AdditionalNotes

	if len(problems) > 0 {
		return services.EvaluateInput{}, problems
	}
	return in, nil
}

// Create scores a submission. Authenticated callers get the result
// persisted; anonymous callers get the result only.
func (h *PredictionHandler) Create(c *gin.Context) {
	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, problems := parseSubmission(req)
	if problems != nil {
		respondFieldErrors(c, problems)
		return
	}

	var userID *uuid.UUID
	if user, ok := CurrentUser(c); ok {
		userID = &user.ID
	}

	eval, err := h.predictions.Evaluate(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	payload := gin.H{
		"sessionId":  eval.Prediction.SessionID,
		"prediction": eval.Result,
		"saved":      eval.Saved,
	}
	if eval.Saved {
		payload["recordId"] = eval.Prediction.ID
		if eval.Record != nil {
			payload["medicalRecordId"] = eval.Record.ID
		}
	} else {
		payload["note"] = "Login to save prediction history"
	}
	respondData(c, http.StatusCreated, payload)
}

// Predict is the legacy scoring endpoint: same validation, same result,
// never persisted, flat response shape.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, problems := parseSubmission(req)
	if problems != nil {
		respondFieldErrors(c, problems)
		return
	}

	eval, err := h.predictions.Evaluate(c.Request.Context(), nil, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"probability":     eval.Result.Probability,
		"riskLevel":       eval.Result.RiskLevel,
		"interpretation":  eval.Result.Interpretation,
		"recommendations": eval.Result.Recommendations,
		"modelType":       eval.Result.ModelType,
		"confidenceScore": eval.Result.ConfidenceScore,
		"timestamp":       eval.Result.Timestamp,
	})
}

// History pages the caller's active predictions.
func (h *PredictionHandler) History(c *gin.Context) {
	user, _ := CurrentUser(c)

	q := repository.HistoryQuery{
		RiskLevel: models.RiskLevel(c.Query("riskLevel")),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 10),
	}

	predictions, total, err := h.predictions.History(c.Request.Context(), user.ID, q)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	pages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		pages++
	}
	respondData(c, http.StatusOK, gin.H{
		"predictions": predictions,
		"pagination": gin.H{
			"page":  q.Page,
			"limit": q.Limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (h *PredictionHandler) Get(c *gin.Context) {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid prediction id")
		return
	}

	prediction, err := h.predictions.Get(c.Request.Context(), id, user)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"prediction": prediction})
}

// Record returns one medical record by id.
func (h *PredictionHandler) Record(c *gin.Context) {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid record id")
		return
	}

	record, err := h.predictions.Record(c.Request.Context(), id, user)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"record": record})
}

func (h *PredictionHandler) Delete(c *gin.Context) {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid prediction id")
		return
	}

	if err := h.predictions.Delete(c.Request.Context(), id, user.ID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Prediction deleted successfully")
}

// Review attaches a doctor's assessment. The route is already gated to
// doctor accounts; the service enforces it again.
func (h *PredictionHandler) Review(c *gin.Context) {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid prediction id")
		return
	}

	var in struct {
		Comments string `json:"comments"`
		Approved bool   `json:"approved"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.predictions.Review(c.Request.Context(), id, user, in.Comments, in.Approved); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review saved")
}

// Stats aggregates active predictions across all users.
func (h *PredictionHandler) Stats(c *gin.Context) {
	stats, err := h.predictions.Statistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// Timeline lists the caller's finalized medical records, newest first.
func (h *PredictionHandler) Timeline(c *gin.Context) {
	user, _ := CurrentUser(c)
	limit := intQuery(c, "limit", 20)

	records, err := h.predictions.Timeline(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"records": records})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
