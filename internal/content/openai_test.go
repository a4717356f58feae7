package content

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/altafino/report-courier/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func openAIConfig(endpoint string) *types.Config {
	cfg := &types.Config{}
	cfg.Content.Generator = "openai"
	cfg.Content.OpenAI.APIKey = "test-key"
	cfg.Content.OpenAI.Endpoint = endpoint
	cfg.Content.OpenAI.TimeoutSeconds = 2
	return cfg
}

func TestOpenAIGeneratorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"subject\":\"Relatórios JFAL\",\"body\":\"Segue em anexo.\"}"}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(openAIConfig(srv.URL), discardLogger())
	out := g.Generate(context.Background(), Request{Sigla: "JFAL", Name: "Justiça Federal de Alagoas"})

	assert.Equal(t, "Relatórios JFAL", out.Subject)
	assert.Equal(t, "Segue em anexo.", out.Body)
	assert.NotEmpty(t, out.BodyHTML)
}

func TestOpenAIGeneratorFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(openAIConfig(srv.URL), discardLogger())
	out := g.Generate(context.Background(), Request{Sigla: "JFAL", Name: "Justiça Federal de Alagoas"})

	// The generator contract: never fail, degrade to the template
	require.NotEmpty(t, out.Subject)
	assert.Contains(t, out.Subject, "JFAL")
	require.NotEmpty(t, out.Body)
}

func TestOpenAIGeneratorFallsBackOnGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"not json at all"}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(openAIConfig(srv.URL), discardLogger())
	out := g.Generate(context.Background(), Request{Sigla: "JFAL", Name: "Justiça Federal de Alagoas"})
	require.NotEmpty(t, out.Subject)
	require.NotEmpty(t, out.Body)
}

func TestNewGeneratorSelection(t *testing.T) {
	cfg := &types.Config{}
	_, ok := NewGenerator(cfg, discardLogger()).(*TemplateGenerator)
	assert.True(t, ok, "default backend is the template")

	cfg.Content.Generator = "openai"
	_, ok = NewGenerator(cfg, discardLogger()).(*TemplateGenerator)
	assert.True(t, ok, "openai without an api key degrades to the template")

	cfg.Content.OpenAI.APIKey = "k"
	_, ok = NewGenerator(cfg, discardLogger()).(*OpenAIGenerator)
	assert.True(t, ok)
}
