package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/plant-identifier/backend/internal/identify"
	"github.com/plant-identifier/backend/internal/models"
)

type capturedRequest struct {
	Path string
	Body map[string]any
}

// fakeGemini serves generateContent with a fixed status and body.
func fakeGemini(t *testing.T, status int, body string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(data, &decoded)

		mu.Lock()
		captured = append(captured, capturedRequest{Path: r.URL.Path, Body: decoded})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash",
		BaseURL: baseURL + "/",
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Model: "gemini-1.5-flash"})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Config{APIKey: "k", Model: "  "})
	assert.Error(t, err)
}

func TestClient_Generate(t *testing.T) {
	reply := "```json\n{\"name\":\"Rose\"}\n```"
	respBody, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply}},
				},
				"finishReason": "STOP",
			},
		},
	})
	srv, captured := fakeGemini(t, http.StatusOK, string(respBody))
	client := newTestClient(t, srv.URL)

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	text, err := client.Generate(context.Background(), identify.Request{
		Prompt: identify.Prompt,
		Image:  models.UploadedImage{MIMEType: "image/jpeg", Data: image},
	})
	require.NoError(t, err)
	assert.Equal(t, reply, text)

	reqs := captured()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "models/gemini-1.5-flash:generateContent"), reqs[0].Path)

	raw, _ := json.Marshal(reqs[0].Body)
	body := string(raw)
	assert.Contains(t, body, base64.StdEncoding.EncodeToString(image))
	assert.Contains(t, body, "image/jpeg")
	assert.Contains(t, body, "Identify the plant in this image")
	assert.NotContains(t, body, "responseSchema")
}

func TestClient_Generate_JSONResponse(t *testing.T) {
	respBody := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"name\":\"Fern\"}"}]}}]}`
	srv, captured := fakeGemini(t, http.StatusOK, respBody)
	client := newTestClient(t, srv.URL)

	text, err := client.Generate(context.Background(), identify.Request{
		Prompt:       identify.Prompt,
		Image:        models.UploadedImage{MIMEType: "image/png", Data: []byte("png")},
		JSONResponse: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Fern"}`, text)

	raw, _ := json.Marshal(captured()[0].Body)
	assert.Contains(t, string(raw), "application/json")
	assert.Contains(t, string(raw), "responseSchema")
}

func TestClient_Generate_UpstreamError(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	client := newTestClient(t, srv.URL)

	_, err := client.Generate(context.Background(), identify.Request{
		Prompt: "p",
		Image:  models.UploadedImage{MIMEType: "image/jpeg", Data: []byte{1}},
	})
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name: "blocked",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantErr: true,
		},
		{
			name:    "empty content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			wantErr: true,
		},
		{
			name: "joins parts and skips thoughts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: `{"name":`},
					{Text: `"Rose"}`},
				}},
			}}},
			want: `{"name":"Rose"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlantRecordSchema(t *testing.T) {
	schema := PlantRecordSchema()
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Len(t, schema.Properties, len(models.FieldNames))
	assert.Equal(t, genai.TypeArray, schema.Properties["careInstructions"].Type)
	assert.Equal(t, genai.TypeString, schema.Properties["careInstructions"].Items.Type)
	assert.Equal(t, genai.TypeString, schema.Properties["maxHeight"].Type)
}
