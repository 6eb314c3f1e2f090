package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livsoul/internal/models"
	"livsoul/internal/repository"
	"livsoul/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPredictionStore struct {
	rows []*models.Prediction
}

func (m *memPredictionStore) Create(_ context.Context, p *models.Prediction) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.rows = append(m.rows, p)
	return nil
}

func (m *memPredictionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Prediction, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, repository.ErrPredictionNotFound
}

func (m *memPredictionStore) GetOwned(_ context.Context, id, ownerID uuid.UUID) (*models.Prediction, error) {
	for _, row := range m.rows {
		if row.ID == id && row.UserID != nil && *row.UserID == ownerID && row.IsActive {
			return row, nil
		}
	}
	return nil, repository.ErrPredictionNotFound
}

func (m *memPredictionStore) ListByOwner(_ context.Context, ownerID uuid.UUID, _ repository.HistoryQuery) ([]models.Prediction, int64, error) {
	var out []models.Prediction
	for _, row := range m.rows {
		if row.UserID != nil && *row.UserID == ownerID && row.IsActive {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memPredictionStore) SoftDelete(_ context.Context, id, ownerID uuid.UUID) error {
	for _, row := range m.rows {
		if row.ID == id && row.UserID != nil && *row.UserID == ownerID {
			row.IsActive = false
			return nil
		}
	}
	return repository.ErrPredictionNotFound
}

func (m *memPredictionStore) SaveReview(_ context.Context, id uuid.UUID, review *models.DoctorReview) error {
	for _, row := range m.rows {
		if row.ID == id {
			row.DoctorReview = review
			return nil
		}
	}
	return repository.ErrPredictionNotFound
}

func (m *memPredictionStore) Statistics(_ context.Context) (*repository.Statistics, error) {
	return &repository.Statistics{Total: int64(len(m.rows))}, nil
}

type memRecordStore struct {
	rows []*models.MedicalRecord
}

func (m *memRecordStore) Create(_ context.Context, record *models.MedicalRecord) error {
	record.ID = uuid.New()
	m.rows = append(m.rows, record)
	return nil
}

func (m *memRecordStore) GetByID(_ context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *memRecordStore) Timeline(_ context.Context, patientID uuid.UUID, _ int) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	for _, row := range m.rows {
		if row.PatientID == patientID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func newTestRouter(store *memPredictionStore, records *memRecordStore, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	vocabulary := models.NewVocabulary(
		[]string{"Fatigue", "Jaundice", "Nausea"},
		[]string{"Alcohol abuse", "Obesity"},
	)
	svc := services.NewPredictionService(store, records, vocabulary, nil, zap.NewNop())
	handler := NewPredictionHandler(svc, zap.NewNop())

	engine := gin.New()
	inject := func(c *gin.Context) {
		if user != nil {
			c.Set(UserContextKey, user)
		}
		c.Next()
	}
	engine.POST("/api/predictions", inject, handler.Create)
	engine.POST("/api/predict", handler.Predict)
	engine.GET("/api/predictions/stats/overview", handler.Stats)
	engine.GET("/api/records/:id", inject, handler.Record)
	return engine
}

func validBody() map[string]any {
	return map[string]any{
		"age":            55,
		"gender":         "male",
		"aWaveAmplitude": 150,
		"aWaveLatency":   15,
		"bWaveAmplitude": 300,
		"bWaveLatency":   50,
		"symptoms":       []string{"Fatigue"},
		"riskFactors":    []string{"Obesity"},
	}
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestCreatePredictionAnonymous(t *testing.T) {
	store := &memPredictionStore{}
	engine := newTestRouter(store, &memRecordStore{}, nil)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/predictions", validBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["saved"])
	assert.NotEmpty(t, data["sessionId"])
	assert.NotEmpty(t, data["note"])
	assert.NotContains(t, data, "recordId")

	prediction := data["prediction"].(map[string]any)
	assert.Contains(t, prediction, "probability")
	assert.Contains(t, prediction, "riskLevel")
	assert.Contains(t, prediction, "recommendations")

	assert.Empty(t, store.rows)
}

func TestCreatePredictionAuthenticated(t *testing.T) {
	store := &memPredictionStore{}
	records := &memRecordStore{}
	user := &models.User{ID: uuid.New(), Role: models.RolePatient}
	engine := newTestRouter(store, records, user)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/predictions", validBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["saved"])
	assert.NotEmpty(t, data["recordId"])
	assert.NotEmpty(t, data["medicalRecordId"])

	require.Len(t, store.rows, 1)
	require.Len(t, records.rows, 1)
}

func TestCreatePredictionNamesEveryBadField(t *testing.T) {
	engine := newTestRouter(&memPredictionStore{}, &memRecordStore{}, nil)

	body := map[string]any{
		"gender":         "male",
		"aWaveAmplitude": "not-a-number",
		"aWaveLatency":   15,
		"bWaveLatency":   50,
	}
	rec, parsed := doJSON(t, engine, http.MethodPost, "/api/predictions", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, false, parsed["success"])
	problems := parsed["errors"].(map[string]any)
	assert.Contains(t, problems, "age")
	assert.Contains(t, problems, "aWaveAmplitude")
	assert.Contains(t, problems, "bWaveAmplitude")
	assert.NotContains(t, problems, "aWaveLatency")
	assert.NotContains(t, problems, "flickerAmplitude")
}

func TestCreatePredictionRejectsNonFiniteAndNegativeValues(t *testing.T) {
	engine := newTestRouter(&memPredictionStore{}, &memRecordStore{}, nil)

	body := validBody()
	body["aWaveAmplitude"] = "NaN"
	body["bWaveLatency"] = "Inf"
	body["flickerAmplitude"] = -5
	rec, parsed := doJSON(t, engine, http.MethodPost, "/api/predictions", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	problems := parsed["errors"].(map[string]any)
	assert.Contains(t, problems, "aWaveAmplitude")
	assert.Contains(t, problems, "bWaveLatency")
	assert.Contains(t, problems, "flickerAmplitude")
	assert.NotContains(t, problems, "aWaveLatency")
}

func TestCreatePredictionAcceptsNumericStrings(t *testing.T) {
	engine := newTestRouter(&memPredictionStore{}, &memRecordStore{}, nil)

	body := validBody()
	body["aWaveAmplitude"] = "150.5"
	rec, _ := doJSON(t, engine, http.MethodPost, "/api/predictions", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLegacyPredictEndpoint(t *testing.T) {
	store := &memPredictionStore{}
	engine := newTestRouter(store, &memRecordStore{}, nil)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/predict", validBody())
	require.Equal(t, http.StatusOK, rec.Code)

	// Flat shape, no envelope, never persisted.
	assert.Contains(t, body, "probability")
	assert.Contains(t, body, "riskLevel")
	assert.NotContains(t, body, "data")
	assert.Empty(t, store.rows)
}

func TestRecordDetailEndpoint(t *testing.T) {
	store := &memPredictionStore{}
	records := &memRecordStore{}
	user := &models.User{ID: uuid.New(), Role: models.RolePatient}
	engine := newTestRouter(store, records, user)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/predictions", validBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	recordID := body["data"].(map[string]any)["medicalRecordId"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/records/"+recordID, nil)
	got := httptest.NewRecorder()
	engine.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &parsed))
	record := parsed["data"].(map[string]any)["record"].(map[string]any)
	assert.Equal(t, recordID, record["id"])

	req = httptest.NewRequest(http.MethodGet, "/api/records/not-a-uuid", nil)
	got = httptest.NewRecorder()
	engine.ServeHTTP(got, req)
	assert.Equal(t, http.StatusBadRequest, got.Code)
}

func TestStatsOverviewIsPublic(t *testing.T) {
	engine := newTestRouter(&memPredictionStore{}, &memRecordStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/predictions/stats/overview", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
