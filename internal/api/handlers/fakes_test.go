package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/voicestore"
)

// wavBytes is a stand-in waveform payload written by the fake engines.
var wavBytes = []byte("RIFF....WAVEfake-waveform")

type fakeSynth struct {
	speakers []string
	fail     bool
	calls    []openvoice.SynthesisRequest
}

func (f *fakeSynth) Synthesize(_ context.Context, req openvoice.SynthesisRequest) error {
	f.calls = append(f.calls, req)
	if f.fail {
		return fmt.Errorf("synthesis backend exploded")
	}
	return os.WriteFile(req.OutputPath, wavBytes, 0o644)
}

func (f *fakeSynth) Speakers() []string {
	return f.speakers
}

type fakeConverter struct {
	failExtract bool
	failConvert bool
	extracts    []openvoice.EmbeddingRequest
	converts    []openvoice.ConvertRequest
}

func (f *fakeConverter) ExtractEmbedding(_ context.Context, req openvoice.EmbeddingRequest) (string, error) {
	f.extracts = append(f.extracts, req)
	if f.failExtract {
		return "", fmt.Errorf("extraction backend exploded")
	}
	out := filepath.Join(req.TargetDir, ".se-fake.pt")
	if err := os.WriteFile(out, []byte("fake-embedding"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeConverter) Convert(_ context.Context, req openvoice.ConvertRequest) error {
	f.converts = append(f.converts, req)
	if f.failConvert {
		return fmt.Errorf("conversion backend exploded")
	}
	return os.WriteFile(req.OutputPath, wavBytes, 0o644)
}

func newStore(t *testing.T) *voicestore.Store {
	t.Helper()
	s, err := voicestore.New(t.TempDir())
	require.NoError(t, err)
	return s
}

// multipartUpload builds a clone-voice request with an audio file part and
// an optional name field.
func multipartUpload(t *testing.T, filename, name string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if name != "" {
		require.NoError(t, writer.WriteField("name", name))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/clone-voice", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// dirNames lists the file names in dir, for leftover-artifact assertions.
func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
