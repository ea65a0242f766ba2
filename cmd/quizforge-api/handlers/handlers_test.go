package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasedu/quizforge/cmd/quizforge-api/middleware"
	"github.com/atlasedu/quizforge/internal/cache"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/pipeline"
	"github.com/atlasedu/quizforge/internal/storage"
)

const longText = `Hücre, canlıların yapısal ve işlevsel temel birimidir. Tüm
canlılar bir ya da daha fazla hücreden oluşur ve yeni hücreler var olan
hücrelerin bölünmesiyle ortaya çıkar. Hücre zarı seçici geçirgendir.`

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text, _, _ string) (*pipeline.SummaryResult, error) {
	return &pipeline.SummaryResult{Summary: "özet: " + text[:20], WordCount: 3}, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(_ context.Context, _ string, params pipeline.GenerationParams) ([]pipeline.Question, error) {
	questions := make([]pipeline.Question, params.NumQuestions)
	for i := range questions {
		questions[i] = pipeline.Question{
			Prompt:        fmt.Sprintf("soru %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: i % 4,
			Difficulty:    params.Difficulty,
		}
	}
	return questions, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, data []byte, _ string) (*pipeline.ExtractedDocument, error) {
	return &pipeline.ExtractedDocument{Text: string(data)}, nil
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, filename string, _ []byte, _ string) (string, error) {
	return "documents/" + filename, nil
}

func (fakeUploader) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://signed.example/" + path, nil
}

type testServer struct {
	router http.Handler
	repos  *storage.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, storage.EnsureSchema(context.Background(), db))

	repos := storage.NewRepositories(db)
	gateway := storage.NewGateway(repos)
	logger := observability.Nop()

	checkpoints := pipeline.NewCheckpointStore(cache.NewMemoryClient(100), time.Minute)
	orchestrator := pipeline.New(logger, pipeline.Dependencies{
		Extractor:  fakeExtractor{},
		Summarizer: fakeSummarizer{},
		Generator:  fakeGenerator{},
		Store:      gateway,
		Documents:  gateway,
		Uploader:   fakeUploader{},
	}, pipeline.DefaultOptions(), checkpoints)

	generateHandler := NewGenerateHandler(logger, orchestrator, checkpoints)
	runsHandler := NewRunsHandler(checkpoints)
	quizzesHandler := NewQuizzesHandler(logger, repos)
	documentsHandler := NewDocumentsHandler(logger, repos)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{Enabled: false}))
		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/generate", generateHandler.Generate)
			r.Post("/generate/upload", generateHandler.GenerateUpload)
			r.Get("/", quizzesHandler.List)
			r.Get("/{quizId}", quizzesHandler.Get)
			r.Post("/{quizId}/publish", quizzesHandler.Publish)
			r.Post("/{quizId}/score", quizzesHandler.Score)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/{runId}", runsHandler.GetRun)
		})
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentsHandler.Create)
			r.Get("/", documentsHandler.List)
		})
	})

	return &testServer{router: r, repos: repos}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func generateBody(wait bool) GenerateRequestDTO {
	return GenerateRequestDTO{
		Title:        "Hücre Bilimi",
		Subject:      "Biyoloji",
		SourceType:   "text",
		SourceText:   longText,
		NumQuestions: 5,
		Wait:         wait,
	}
}

func TestGenerate_SyncReturnsQuiz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", generateBody(true))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[RunResultDTO](t, rec)
	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.QuizID)
	assert.Len(t, result.Questions, 5)

	// The quiz is durable and readable.
	getRec := ts.do(t, http.MethodGet, "/api/v1/quizzes/"+result.QuizID, nil)
	require.Equal(t, http.StatusOK, getRec.Code)
	q := decode[storage.Quiz](t, getRec)
	assert.Equal(t, "Hücre Bilimi", q.Title)
	assert.Equal(t, storage.QuizStatusReady, q.Status)
}

func TestGenerate_AsyncRunIsPollable(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", generateBody(false))
	require.Equal(t, http.StatusAccepted, rec.Code)

	accepted := decode[RunAcceptedDTO](t, rec)
	require.NotEmpty(t, accepted.RunID)

	require.Eventually(t, func() bool {
		pollRec := ts.do(t, http.MethodGet, "/api/v1/runs/"+accepted.RunID, nil)
		if pollRec.Code != http.StatusOK {
			return false
		}
		cp := decode[pipeline.Checkpoint](t, pollRec)
		return cp.Stage == pipeline.StageCompleted && cp.Percent == 100 && cp.QuizID != ""
	}, 3*time.Second, 20*time.Millisecond)
}

func TestGenerate_ValidationErrorIs400(t *testing.T) {
	ts := newTestServer(t)

	body := generateBody(true)
	body.NumQuestions = 0

	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_RejectsUploadSourceOnJSONEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := generateBody(true)
	body.SourceType = "upload"

	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateUpload_Multipart(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notlar.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(longText))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Yüklenen Ders"))
	require.NoError(t, mw.WriteField("numQuestions", "3"))
	require.NoError(t, mw.WriteField("wait", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/generate/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[RunResultDTO](t, rec)
	assert.Len(t, result.Questions, 3)
}

func TestRuns_UnknownRunIs404(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/runs/no-such-run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizzes_PublishLifecycle(t *testing.T) {
	ts := newTestServer(t)

	result := decode[RunResultDTO](t, ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", generateBody(true)))

	pubRec := ts.do(t, http.MethodPost, "/api/v1/quizzes/"+result.QuizID+"/publish", nil)
	require.Equal(t, http.StatusOK, pubRec.Code)
	q := decode[storage.Quiz](t, pubRec)
	assert.Equal(t, storage.QuizStatusPublished, q.Status)

	// Publishing again is idempotent.
	againRec := ts.do(t, http.MethodPost, "/api/v1/quizzes/"+result.QuizID+"/publish", nil)
	assert.Equal(t, http.StatusOK, againRec.Code)
}

func TestQuizzes_Score(t *testing.T) {
	ts := newTestServer(t)

	result := decode[RunResultDTO](t, ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", generateBody(true)))

	// Fake generator sets CorrectAnswer = i % 4.
	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/"+result.QuizID+"/score", ScoreRequestDTO{
		Answers: []int{0, 1, 2, 0, -1},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var score struct {
		Total      int `json:"total"`
		Correct    int `json:"correct"`
		Incorrect  int `json:"incorrect"`
		Unanswered int `json:"unanswered"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&score))
	assert.Equal(t, 5, score.Total)
	assert.Equal(t, 3, score.Correct)
	assert.Equal(t, 1, score.Incorrect)
	assert.Equal(t, 1, score.Unanswered)
}

func TestDocuments_RegisterAndGenerate(t *testing.T) {
	ts := newTestServer(t)

	createRec := ts.do(t, http.MethodPost, "/api/v1/documents/", CreateDocumentDTO{
		Name: "ders-notu",
		Text: longText,
	})
	require.Equal(t, http.StatusCreated, createRec.Code)
	doc := decode[storage.Document](t, createRec)

	body := generateBody(true)
	body.SourceType = "document"
	body.SourceText = ""
	body.DocumentID = doc.ID.String()

	rec := ts.do(t, http.MethodPost, "/api/v1/quizzes/generate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDocuments_CreateRequiresText(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/documents/", CreateDocumentDTO{Name: "bos", Text: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_EnabledRequiresKey(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Auth(middleware.AuthConfig{Enabled: true, APIKey: "secret"}))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(middleware.TeacherFromContext(r.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Teacher-ID", "teacher-42")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-42", strings.TrimSpace(rec.Body.String()))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	req.Header.Set("X-Teacher-ID", "teacher-42")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
