package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"careermind-api/internal/ats"
	"careermind-api/internal/inference"
	"careermind-api/internal/market"
	"careermind-api/internal/roadmap"
	"careermind-api/internal/shared"
	"careermind-api/internal/slots"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testMetricsKey = "0123456789abcdef0123456789abcdef"

type stubGenerator struct {
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ inference.DecodingPolicy) (string, error) {
	s.calls++
	return s.output, s.err
}

func newTestServer(t *testing.T, gen roadmap.Generator) *echo.Echo {
	t.Helper()
	e, base := NewServer(ServerConfig{MetricsAPIKey: testMetricsKey}, nil)
	svc, err := roadmap.NewService(gen, slots.NewLocalLimiter(1), roadmap.Config{Model: "test"}, nil)
	require.NoError(t, err)
	require.NoError(t, RegisterRoadmapRoutes(base, svc, "test"))
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func postRoadmap(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate-roadmap", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return serve(e, req)
}

func TestWelcome(t *testing.T) {
	e := newTestServer(t, &stubGenerator{err: errors.New("never called")})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, map[string]any{"message": "Welcome to the Roadmap Generator API!"}, decodeJSON(t, rec))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderXRequestID), "req_"))
}

func TestGenerateRoadmap_Success(t *testing.T) {
	gen := &stubGenerator{output: "Month 1: statistics"}
	e := newTestServer(t, gen)
	rec := postRoadmap(e, `{"career_goal":"Become a Data Scientist","skills":["Python","SQL"],"learning_preference":"Project-based learning"}`)
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, map[string]any{"roadmap": "Month 1: statistics"}, decodeJSON(t, rec))
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateRoadmap_InvalidRequest(t *testing.T) {
	bodies := map[string]string{
		"empty career goal": `{"career_goal": "", "skills": ["Python"], "learning_preference": "Books"}`,
		"missing skills":    `{"career_goal": "x", "learning_preference": "Books"}`,
		"not an object":     `["x"]`,
		"empty body":        ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{output: "unused"}
			e := newTestServer(t, gen)
			rec := postRoadmap(e, body)
			assert.Equal(t, 400, rec.Code)
			assert.Equal(t, map[string]any{"error": "All fields (career_goal, skills, learning_preference) are required."}, decodeJSON(t, rec))
			assert.Zero(t, gen.calls)
		})
	}
}

func TestGenerateRoadmap_GenerationFailureHidesDetail(t *testing.T) {
	gen := &stubGenerator{err: errors.New("CUDA out of memory at layer 7")}
	e := newTestServer(t, gen)
	rec := postRoadmap(e, `{"career_goal":"a","skills":["b"],"learning_preference":"c"}`)
	assert.Equal(t, 500, rec.Code)
	assert.Equal(t, map[string]any{"error": "An error occurred while generating the roadmap."}, decodeJSON(t, rec))
	assert.NotContains(t, rec.Body.String(), "CUDA")
}

func TestGenerateRoadmap_WrongMethodAndUnknownPath(t *testing.T) {
	gen := &stubGenerator{output: "unused"}
	e := newTestServer(t, gen)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/generate-roadmap", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/roadmaps", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, gen.calls)
}

func TestCORS_Preflight(t *testing.T) {
	e := newTestServer(t, &stubGenerator{})
	req := httptest.NewRequest(http.MethodOptions, "/generate-roadmap", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dashboard.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := serve(e, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS(t *testing.T) {
	e := newTestServer(t, &stubGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dashboard.example")
	rec := serve(e, req)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestPingAndMetrics(t *testing.T) {
	e := newTestServer(t, &stubGenerator{})
	assert.Equal(t, 200, serve(e, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)

	assert.Equal(t, 401, serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	wrong := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	wrong.Header.Set("Authorization", "Bearer "+strings.Repeat("x", shared.APIKeyLength))
	assert.Equal(t, 401, serve(e, wrong).Code)

	ok := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	ok.Header.Set("Authorization", "Bearer "+testMetricsKey)
	rec := serve(e, ok)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type fakeAnalyzer struct {
	in  ats.Input
	out string
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in ats.Input) (string, error) {
	f.in = in
	return f.out, f.err
}

func atsRequest(t *testing.T, fields map[string]string, resume []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if resume != nil {
		part, err := w.CreateFormFile("resume", "resume.pdf")
		require.NoError(t, err)
		_, err = part.Write(resume)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/ats/analyze", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newATSServer(t *testing.T, a ResumeAnalyzer) *echo.Echo {
	t.Helper()
	e, _ := newObservedATSServer(t, a)
	return e
}

func newObservedATSServer(t *testing.T, a ResumeAnalyzer) (*echo.Echo, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	e, base := NewServer(ServerConfig{}, zap.New(core).Sugar())
	require.NoError(t, RegisterATSRoutes(base, a))
	return e, logs
}

func TestAnalyze_Success(t *testing.T) {
	fa := &fakeAnalyzer{out: "Strong fit"}
	e := newATSServer(t, fa)
	rec := serve(e, atsRequest(t, map[string]string{
		"job_description": "Data engineer",
		"role":            "Data Scientist",
		"mode":            "ats_match",
	}, []byte("%PDF-1.4 fake")))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, map[string]any{"analysis": "Strong fit"}, decodeJSON(t, rec))
	assert.Equal(t, ats.Input{
		Resume:         []byte("%PDF-1.4 fake"),
		JobDescription: "Data engineer",
		Role:           "Data Scientist",
		Mode:           ats.ModeATSMatch,
	}, fa.in)
}

func TestAnalyze_DefaultsMode(t *testing.T) {
	fa := &fakeAnalyzer{out: "ok"}
	e := newATSServer(t, fa)
	rec := serve(e, atsRequest(t, map[string]string{"job_description": "jd", "role": "r"}, []byte("pdf")))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, ats.ModeHRReview, fa.in.Mode)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		analyzer *fakeAnalyzer
		resume   []byte
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing resume",
			analyzer: &fakeAnalyzer{},
			wantCode: 400,
			wantMsg:  "resume file is required",
		},
		{
			name:     "input error",
			analyzer: &fakeAnalyzer{err: &ats.InputError{Msg: "role is required"}},
			resume:   []byte("pdf"),
			wantCode: 400,
			wantMsg:  "role is required",
		},
		{
			name:     "model failure",
			analyzer: &fakeAnalyzer{err: errors.New("quota exceeded for project 1234")},
			resume:   []byte("pdf"),
			wantCode: 500,
			wantMsg:  "An error occurred while analyzing the resume.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newATSServer(t, tt.analyzer)
			rec := serve(e, atsRequest(t, map[string]string{"job_description": "jd", "role": "r"}, tt.resume))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, map[string]any{"error": tt.wantMsg}, decodeJSON(t, rec))
		})
	}
}

func TestAnalyze_ModelFailureLogsAtWarn(t *testing.T) {
	e, logs := newObservedATSServer(t, &fakeAnalyzer{err: errors.New("gemini unavailable")})
	rec := serve(e, atsRequest(t, map[string]string{"job_description": "jd", "role": "r"}, []byte("pdf")))
	assert.Equal(t, 500, rec.Code)

	entries := logs.FilterMessage("end_of_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestAnalyze_InputErrorLogsAtInfo(t *testing.T) {
	e, logs := newObservedATSServer(t, &fakeAnalyzer{})
	rec := serve(e, atsRequest(t, map[string]string{"job_description": "jd", "role": "r"}, nil))
	assert.Equal(t, 400, rec.Code)

	entries := logs.FilterMessage("end_of_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

const marketCSV = `,roles,companies,locations,experience,skills
0,Data Scientist,Acme,"Bangalore, Pune",2-5 Yrs,"Python
SQL"
1,ML Engineer,Acme,Bangalore,5-8 Yrs,"PyTorch
AWS"
2,Analyst,Globex,Mumbai,0-2 Yrs,"R
Tableau"
`

func newMarketServer(t *testing.T) *echo.Echo {
	t.Helper()
	ds, err := market.Load(strings.NewReader(marketCSV))
	require.NoError(t, err)
	e, base := NewServer(ServerConfig{}, nil)
	require.NoError(t, RegisterMarketRoutes(base, ds))
	return e
}

func TestMarket_Summary(t *testing.T) {
	rec := serve(newMarketServer(t), httptest.NewRequest(http.MethodGet, "/job-market/summary", nil))
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"total_jobs":3,"unique_companies":2,"location_mentions":4}`, rec.Body.String())
}

func TestMarket_TopLists(t *testing.T) {
	e := newMarketServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/job-market/locations?limit=2", nil))
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `[{"name":"bangalore","count":2},{"name":"mumbai","count":1}]`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/job-market/companies", nil))
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `[{"name":"acme","count":2},{"name":"globex","count":1}]`, rec.Body.String())

	for _, bad := range []string{"0", "-1", "abc", "101"} {
		rec = serve(e, httptest.NewRequest(http.MethodGet, "/job-market/companies?limit="+bad, nil))
		assert.Equal(t, 400, rec.Code, bad)
	}
}

func TestMarket_Jobs(t *testing.T) {
	e := newMarketServer(t)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/job-market/jobs?company=Acme&experience=5-8+yrs&experience=0-2+yrs", nil))
	assert.Equal(t, 200, rec.Code)

	var resp JobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "ml engineer", resp.Jobs[0].Role)
}

func TestMarket_FiltersAndSkills(t *testing.T) {
	e := newMarketServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/job-market/filters", nil))
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"companies":["acme","globex"],"experience":["0-2 yrs","2-5 yrs","5-8 yrs"]}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/job-market/skills", nil))
	assert.Equal(t, 200, rec.Code)
	var cats []market.CategoryBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 4)
	assert.Equal(t, "core", cats[0].Category)
}

func TestRegister_RejectsNilDependencies(t *testing.T) {
	_, base := NewServer(ServerConfig{}, nil)
	assert.Error(t, RegisterRoadmapRoutes(base, nil, "m"))
	assert.Error(t, RegisterATSRoutes(base, nil))
	assert.Error(t, RegisterMarketRoutes(base, nil))
}
