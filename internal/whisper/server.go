package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// serverTimeout bounds a single inference call. Long videos on CPU can take
// most of this.
const serverTimeout = 30 * time.Minute

// ServerClient talks to a whisper.cpp HTTP server (whisper-server). Unlike
// the CLI engine the model stays resident in the server between requests.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewServerClient(baseURL string) *ServerClient {
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: serverTimeout},
	}
}

func (c *ServerClient) Name() string {
	return "whisper-server"
}

// Transcribe posts the audio file to whisper-server's /inference endpoint and
// decodes the JSON result. The Model field of the request is ignored; the
// server is started with a fixed model.
func (c *ServerClient) Transcribe(ctx context.Context, req Request) (*Result, error) {
	form, contentType, err := inferenceForm(req)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, form)
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	log.Printf("[whisper] posting %s to %s", req.FilePath, url)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper server request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read whisper server response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper server error (status %d): %s", resp.StatusCode, body)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode whisper server response: %w", err)
	}

	return &Result{
		Text:     strings.TrimSpace(payload.Text),
		Language: req.Language,
	}, nil
}

// inferenceForm builds the multipart body whisper-server expects: the audio
// file plus response_format and optional language fields.
func inferenceForm(req Request) (io.Reader, string, error) {
	audio, err := os.Open(req.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}

	mw.WriteField("response_format", "json")
	mw.WriteField("temperature", "0.0")
	if req.Language != "" && req.Language != "auto" {
		mw.WriteField("language", req.Language)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
