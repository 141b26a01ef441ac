package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

const pdfHeader = "%PDF-1.4\n"

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, files []upload, values map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

type stubAnalyzer struct {
	req    models.AnalyseRequest
	result *models.AnalysisResult
	err    error
}

func (s *stubAnalyzer) AnalyzeFile(_ context.Context, path string, req models.AnalyseRequest) (*models.AnalysisResult, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	if err := services.CheckPDF(path); err != nil {
		return nil, err
	}
	return s.result, nil
}

// fileParser returns the uploaded file content after the PDF header.
type fileParser struct{}

func (fileParser) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), pdfHeader), nil
}

func (p fileParser) ExtractTextWithMetaData(path string) (*services.PDFContent, error) {
	text, err := p.ExtractText(path)
	if err != nil {
		return nil, err
	}
	return &services.PDFContent{Text: text, PageCount: 1, FilePath: path}, nil
}

type staticOffers []models.Offer

func (s staticOffers) ListActive(context.Context) ([]models.Offer, error) { return s, nil }

type memoryAnalyses struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Analysis
}

func (m *memoryAnalyses) Create(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.ID] = *a
	return nil
}

func (m *memoryAnalyses) FindByID(_ context.Context, id uuid.UUID) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrAnalysisNotFound
	}
	return &a, nil
}

func (m *memoryAnalyses) UpdateStatus(context.Context, uuid.UUID, models.AnalysisStatus) error {
	return nil
}

func (m *memoryAnalyses) Claim(context.Context, uuid.UUID) (bool, error) { return true, nil }

func (m *memoryAnalyses) UpdateResult(context.Context, uuid.UUID, *models.AnalysisResult) error {
	return nil
}

func (m *memoryAnalyses) UpdateError(context.Context, uuid.UUID, string) error { return nil }

func (m *memoryAnalyses) FindPendingJobs(context.Context, int) ([]models.Analysis, error) {
	return nil, nil
}

type recordingQueue struct{ ids []uuid.UUID }

func (q *recordingQueue) EnqueueJob(id uuid.UUID) { q.ids = append(q.ids, id) }

type testServer struct {
	app      *fiber.App
	dir      string
	analyzer *stubAnalyzer
	repo     *memoryAnalyses
	queue    *recordingQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	storage := services.NewStorageService(dir, 1<<20)
	logger := zap.NewNop()

	s := &testServer{
		dir:      dir,
		analyzer: &stubAnalyzer{result: &models.AnalysisResult{Skills: []string{"python"}, Duration: "2 ans 0 mois"}},
		repo:     &memoryAnalyses{rows: map[uuid.UUID]models.Analysis{}},
		queue:    &recordingQueue{},
	}
	offers := staticOffers{{
		ID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Title:          "Backend developer",
		RequiredSkills: "Python, Docker",
		Tags:           []string{"backend"},
		Languages:      []string{"Anglais (B2)"},
	}}

	s.app = NewApp(Handlers{
		Analyse:  NewAnalyseHandler(s.analyzer, storage, logger),
		Analyses: NewAnalysisHandler(s.repo, storage, s.queue, logger),
		Results:  NewResultHandler(s.repo),
		Offers:   NewOfferHandler(offers, storage, fileParser{}, 4, logger),
	}, AppOptions{BodyLimit: 4 << 20})
	return s
}

func (s *testServer) uploads(t *testing.T) []os.DirEntry {
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	return entries
}

func TestAnalyseCV(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/api/v1/analyse-cv",
		[]upload{{"file", "resume.pdf", pdfHeader + "Jane Doe"}},
		map[string]string{"languages": "Français (C1), Anglais (B2)"})
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result models.AnalysisResult
	decode(t, resp, &result)
	assert.Equal(t, []string{"python"}, result.Skills)
	assert.Equal(t, []string{"Français (C1)", "Anglais (B2)"}, s.analyzer.req.Languages)
	assert.Empty(t, s.uploads(t))
}

func TestAnalyseCVErrors(t *testing.T) {
	tests := []struct {
		name     string
		files    []upload
		err      error
		wantCode int
	}{
		{"no file", nil, nil, fiber.StatusBadRequest},
		{"not a pdf", []upload{{"file", "resume.docx", "PK"}}, nil, fiber.StatusBadRequest},
		{"extraction failure", []upload{{"file", "resume.pdf", pdfHeader}}, services.ErrExtraction, fiber.StatusUnprocessableEntity},
		{"classifier missing", []upload{{"file", "resume.pdf", pdfHeader}}, classifier.ErrArtifactMissing, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.analyzer.err = tt.err

			req := multipartRequest(t, "/api/v1/analyse-cv", tt.files, map[string]string{"languages": ""})
			resp, err := s.app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body struct {
				Error string `json:"error"`
				Code  int    `json:"code"`
			}
			decode(t, resp, &body)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, s.uploads(t))
		})
	}
}

func TestAsyncAnalysis(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/api/v1/analyses", []upload{{"cv", "resume.pdf", pdfHeader}}, map[string]string{"languages": "Anglais"})
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var created models.AnalysisResponse
	decode(t, resp, &created)
	assert.Equal(t, string(models.StatusQueued), created.Status)
	require.Len(t, s.queue.ids, 1)
	assert.Equal(t, created.ID, s.queue.ids[0].String())

	stored, err := s.repo.FindByID(context.Background(), s.queue.ids[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Anglais"}, stored.Languages)
	assert.Len(t, s.uploads(t), 1)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/result/"+created.ID, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result models.ResultResponse
	decode(t, resp, &result)
	assert.Equal(t, "queued", result.Status)
	assert.Nil(t, result.Result)
}

func TestGetResult(t *testing.T) {
	s := newTestServer(t)
	done, failed := uuid.New(), uuid.New()
	msg := "text extraction failed"
	s.repo.rows[done] = models.Analysis{ID: done, Status: models.StatusCompleted, Result: &models.AnalysisResult{Duration: "1 an 0 mois"}}
	s.repo.rows[failed] = models.Analysis{ID: failed, Status: models.StatusFailed, ErrorMessage: &msg}

	tests := []struct {
		name     string
		id       string
		wantCode int
		check    func(t *testing.T, r models.ResultResponse)
	}{
		{"completed", done.String(), fiber.StatusOK, func(t *testing.T, r models.ResultResponse) {
			require.NotNil(t, r.Result)
			assert.Equal(t, "1 an 0 mois", r.Result.Duration)
		}},
		{"failed", failed.String(), fiber.StatusOK, func(t *testing.T, r models.ResultResponse) {
			require.NotNil(t, r.ErrorMessage)
			assert.Equal(t, msg, *r.ErrorMessage)
		}},
		{"unknown", uuid.NewString(), fiber.StatusNotFound, nil},
		{"malformed", "not-a-uuid", fiber.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/result/"+tt.id, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.check != nil {
				var r models.ResultResponse
				decode(t, resp, &r)
				tt.check(t, r)
			}
		})
	}
}

func TestListOffers(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Offers []models.Offer `json:"offers"`
		Count  int            `json:"count"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Backend developer", body.Offers[0].Title)
}

func TestMatchOffers(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/api/v1/match-offers", []upload{
		{"files", "partial.pdf", pdfHeader + "Python developer"},
		{"files", "full.pdf", pdfHeader + "Python and Docker, backend work, Anglais courant"},
	}, nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body models.MatchOffersResponse
	decode(t, resp, &body)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, "full.pdf", body.Matches[0].MatchedCV)
	assert.Equal(t, 1.0, body.Matches[0].Score)
	assert.Equal(t, "Backend developer", body.Matches[0].Offer.Title)
	assert.Empty(t, s.uploads(t))
}

func TestMatchOffersRejectsNonPDF(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/api/v1/match-offers", []upload{{"files", "cv.pdf", "not a pdf"}}, nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, s.uploads(t))
}

func TestRootListsEndpoints(t *testing.T) {
	app := NewApp(Handlers{}, AppOptions{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	var body struct {
		Endpoints []string `json:"endpoints"`
	}
	decode(t, resp, &body)
	assert.Equal(t, []string{"GET /api/v1/health"}, body.Endpoints)
}
