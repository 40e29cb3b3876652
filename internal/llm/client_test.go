package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayash-Bera/campusqa/internal/models"
)

func completionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "llama-3.1-8b-instant",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]interface{}{
				"role":    "assistant",
				"content": content,
			},
		}},
	}
}

func newTestClient(url string, timeout time.Duration) *Client {
	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: url + "/",
		Model:   "llama-3.1-8b-instant",
		Timeout: timeout,
	}, logrus.New())
	client.retry = RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return client
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.1-8b-instant", body["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(`  {"category": "Campus Life", "confidence": 0.9}  `))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL, time.Second).Complete(context.Background(), "hello", 60)
	require.NoError(t, err)
	assert.Equal(t, `{"category": "Campus Life", "confidence": 0.9}`, reply)
}

func TestClient_AuthErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid API Key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, time.Second).Complete(context.Background(), "hello", 60)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("ok"))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL, time.Second).Complete(context.Background(), "hello", 60)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestClient(server.URL, 50*time.Millisecond).Complete(context.Background(), "hello", 60)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestService_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("```json\n{\"category\": \"hostel & accommodation\", \"confidence\": \"0.82\"}\n```"))
	}))
	defer server.Close()

	service := NewService(newTestClient(server.URL, time.Second), logrus.New())
	category, confidence, err := service.Classify(context.Background(), "Is there a hostel curfew?")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHostel, category)
	assert.InDelta(t, 0.82, confidence, 1e-9)
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		reply      string
		category   string
		confidence float64
		wantErr    bool
	}{
		{`{"category": "Placements & Career", "confidence": 0.7}`, models.CategoryPlacements, 0.7, false},
		{`{"category": "Astrology", "confidence": 0.9}`, models.CategoryGeneral, 0.9, false},
		{`{"category": "Campus Life", "confidence": 1.7}`, models.CategoryCampusLife, 1, false},
		{`{"category": "Campus Life", "confidence": -3}`, models.CategoryCampusLife, 0, false},
		{`Sure! {"category": "Campus Life"} hope that helps`, models.CategoryCampusLife, 0, false},
		{`I cannot decide`, "", 0, true},
		{`{"category": "Campus Life", "confidence": "high"}`, "", 0, true},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			result, err := ParseClassification(tt.reply, models.Categories, models.CategoryGeneral)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, result.Category)
			assert.InDelta(t, tt.confidence, result.Confidence, 1e-9)
		})
	}
}

func TestBuildClassificationPromptTruncates(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	prompt := BuildClassificationPrompt(string(long), models.Categories)
	assert.Contains(t, prompt, models.CategoryScholarships)
	assert.Less(t, len(prompt), 1600)
}

func TestBuildClassificationPromptKeepsRunesWhole(t *testing.T) {
	prompt := BuildClassificationPrompt(strings.Repeat("é", 3000), models.Categories)
	assert.True(t, utf8.ValidString(prompt))
	assert.Equal(t, maxPromptText, strings.Count(prompt, "é"))
}
