package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/healthdesk/internal/chat"
	"github.com/Skufu/healthdesk/internal/faq"
	"github.com/Skufu/healthdesk/internal/lexical"
	"github.com/Skufu/healthdesk/internal/risk"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

// fixedModel reports the same positive-class probability for every input.
type fixedModel struct {
	p     float64
	calls int
}

func (m *fixedModel) Predict([]float64) (int, error) {
	m.calls++
	if m.p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (m *fixedModel) PredictProba([]float64) ([]float64, error) {
	return []float64{1 - m.p, m.p}, nil
}

var testCorpus = []faq.Entry{
	{Question: "Adet düzensizliği neden olur?", Answer: "Hormonal dengesizlikler en sık nedendir."},
	{Question: "Smear testi ne sıklıkla yapılmalı?", Answer: "Genellikle üç yılda bir önerilir."},
}

func testDeps(t *testing.T, model risk.Classifier) Deps {
	t.Helper()
	ix, err := lexical.Build(testCorpus)
	require.NoError(t, err)
	return Deps{
		Matcher:    chat.NewMatcher(ix, chat.FixedSelector(0)),
		Assessor:   risk.NewAssessor(model),
		FAQCount:   ix.Len(),
		IndexReady: true,
		StaticRoot: t.TempDir(),
		Now:        func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) },
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func postForm(router http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func riskForm(weight string) url.Values {
	return url.Values{
		"age":               {"52"},
		"height":            {"170"},
		"weight":            {weight},
		"smoking":           {"1"},
		"genetic_risk":      {"1"},
		"physical_activity": {"0"},
		"alcohol_intake":    {"1"},
		"cancer_history":    {"0"},
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(testDeps(t, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	id := "0b9c6f5e-4a53-4bb4-9a2e-3f1f7b0d2c11"

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/healthz", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(requestIDHeader))
}

func TestReadyz(t *testing.T) {
	t.Run("all loaded", func(t *testing.T) {
		d := testDeps(t, &fixedModel{})
		d.DB = fakeDB{}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readyz", nil)
		NewRouter(d).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["db"])
	})

	t.Run("model missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readyz", nil)
		NewRouter(testDeps(t, nil)).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "unavailable", body["model"])
		assert.Equal(t, "disabled", body["db"])
	})

	t.Run("db down", func(t *testing.T) {
		d := testDeps(t, &fixedModel{})
		d.DB = fakeDB{err: errors.New("connection refused")}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readyz", nil)
		NewRouter(d).ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}

func TestPredictSuccess(t *testing.T) {
	router := NewRouter(testDeps(t, &fixedModel{p: 0.42}))
	w := postForm(router, "/predict", riskForm("70"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(42), body["risk_percentage"])
	assert.Equal(t, "Orta Risk", body["risk_level"])
	assert.Equal(t, "medium-risk", body["risk_class"])
	assert.Equal(t, "success", body["status"])
	assert.Len(t, body["actions"], 5)
	assert.Equal(t, 24.2, body["bmi"])
}

func TestPredictAcceptsJSON(t *testing.T) {
	router := NewRouter(testDeps(t, &fixedModel{p: 0.9}))
	w := postJSON(router, "/predict", `{"age": 60, "height": 165, "weight": 60, "smoking": 1, "genetic_risk": 2, "physical_activity": 0, "alcohol_intake": 1, "cancer_history": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "high-risk", decode(t, w)["risk_class"])
}

func TestPredictRejectsBMI(t *testing.T) {
	model := &fixedModel{p: 0.1}
	router := NewRouter(testDeps(t, model))
	w := postForm(router, "/predict", riskForm("300"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "Geçersiz veri")
	assert.Contains(t, body["error"], "BMI")
	assert.Zero(t, model.calls)
}

func TestPredictRejectsNonNumeric(t *testing.T) {
	router := NewRouter(testDeps(t, &fixedModel{}))
	form := riskForm("70")
	form.Set("age", "elli")
	w := postForm(router, "/predict", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictWithoutModel(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	// Invalid input must still report the missing model, not a validation error.
	w := postForm(router, "/predict", url.Values{"age": {"3"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Model yüklenemedi")
}

type brokenModel struct{}

func (brokenModel) Predict([]float64) (int, error) { return 0, errors.New("tensor exploded") }

func TestPredictClassifierFailureHidesDetails(t *testing.T) {
	router := NewRouter(testDeps(t, brokenModel{}))
	w := postForm(router, "/predict", riskForm("70"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "tensor")
	assert.Equal(t, msgPredictFailed, decode(t, w)["error"])
}

func TestChatbotAnswers(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	w := postJSON(router, "/chatbot", `{"message": "Smear testi ne sıklıkla yapılmalı?"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Contains(t, body["response"], "Genellikle üç yılda bir önerilir.")
	assert.Equal(t, float64(2), body["faq_count"])
	assert.Equal(t, "2026-10-17T09:30:00Z", body["timestamp"])
	assert.Equal(t, "success", body["status"])
}

func TestChatbotGreetingAndFallback(t *testing.T) {
	router := NewRouter(testDeps(t, nil))

	w := postJSON(router, "/chatbot", `{"message": "Merhaba!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Merhaba! Kadın sağlığı konusunda size nasıl yardımcı olabilirim?", decode(t, w)["response"])

	w = postJSON(router, "/chatbot", `{"message": "kulak ağrısı geçmiyor"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, chat.FallbackMessage, decode(t, w)["response"])
}

func TestChatbotWithoutIndex(t *testing.T) {
	d := testDeps(t, nil)
	d.Matcher = chat.NewMatcher(nil, chat.FixedSelector(0))
	d.IndexReady = false
	d.FAQCount = 0
	router := NewRouter(d)

	w := postJSON(router, "/chatbot", `{"message": "Smear testi ne sıklıkla yapılmalı?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, chat.FallbackMessage, body["response"])
	assert.Equal(t, float64(0), body["faq_count"])
}

func TestChatbotValidation(t *testing.T) {
	router := NewRouter(testDeps(t, nil))

	cases := []struct {
		name        string
		contentType string
		body        string
		wantError   string
	}{
		{"not json", "text/plain", "merhaba", "Content-Type application/json olmalıdır"},
		{"missing message", "application/json", `{}`, "Mesaj bulunamadı"},
		{"bad json", "application/json", `{"message":`, "Mesaj bulunamadı"},
		{"empty message", "application/json", `{"message": "   "}`, "Boş mesaj gönderilemez"},
		{"too long", "application/json", `{"message": "` + strings.Repeat("ş", 501) + `"}`, "Mesaj çok uzun. (max 500 karakter)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/chatbot", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantError, decode(t, w)["error"])
		})
	}

	w := postJSON(router, "/chatbot", `{"message": "`+strings.Repeat("ş", 500)+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotFound(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nope", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sayfa bulunamadı", decode(t, w)["error"])
}

func TestStaticIndex(t *testing.T) {
	d := testDeps(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(d.StaticRoot, "index.html"), []byte("<h1>Sağlık</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(d.StaticRoot, "script.js"), []byte("console.log(1)"), 0o644))
	router := NewRouter(d)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sağlık")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/static/script.js", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	postJSON(router, "/chatbot", `{"message": "merhaba"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `healthdesk_chat_replies_total{outcome="greeting"}`)
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}
