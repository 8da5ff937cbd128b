// Package checkpoints fetches pretrained model artifacts into the local
// checkpoint tree.
package checkpoints

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the upstream location of the OpenVoice checkpoints.
const DefaultBaseURL = "https://huggingface.co/myshell-ai/OpenVoice/resolve/main/checkpoints"

// File is one artifact in the checkpoint manifest. RemotePath is relative to
// the base URL, LocalPath relative to the checkpoint directory.
type File struct {
	RemotePath string
	LocalPath  string
}

// Manifest lists every artifact the voice service needs at startup.
func Manifest() []File {
	return []File{
		{RemotePath: "converter/checkpoint.pth", LocalPath: "converter/checkpoint.pth"},
		{RemotePath: "converter/config.json", LocalPath: "converter/config.json"},
		{RemotePath: "base_speakers/EN/checkpoint.pth", LocalPath: "base_speakers/EN/checkpoint.pth"},
		{RemotePath: "base_speakers/EN/config.json", LocalPath: "base_speakers/EN/config.json"},
		{RemotePath: "base_speakers/EN/en_default_se.pth", LocalPath: "base_speakers/EN/en_default_se.pth"},
	}
}

// Fetcher downloads manifest files, skipping ones already present.
type Fetcher struct {
	baseURL string
	destDir string
	client  *http.Client
}

// NewFetcher creates a fetcher writing under destDir.
func NewFetcher(baseURL, destDir string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		destDir: destDir,
		client: &http.Client{
			Timeout: 30 * time.Minute, // checkpoints are multi-GB
		},
	}
}

// FetchAll downloads every manifest file. Per-file failures are logged and
// do not abort the remaining downloads; the error reports how many files
// are still missing afterwards.
func (f *Fetcher) FetchAll(ctx context.Context, files []File) error {
	missing := 0
	for _, file := range files {
		dest := filepath.Join(f.destDir, file.LocalPath)

		if _, err := os.Stat(dest); err == nil {
			log.Printf("[checkpoints] %s already exists, skipping", file.LocalPath)
			continue
		}

		log.Printf("[checkpoints] downloading %s...", file.LocalPath)
		if err := f.fetch(ctx, file.RemotePath, dest); err != nil {
			log.Printf("[checkpoints] failed to download %s: %v", file.LocalPath, err)
			missing++
			continue
		}
		log.Printf("[checkpoints] downloaded %s", file.LocalPath)
	}

	if missing > 0 {
		return fmt.Errorf("%d checkpoint file(s) could not be downloaded", missing)
	}
	return nil
}

// fetch downloads one file to a temp name and renames it into place, so an
// interrupted download never leaves a truncated checkpoint behind.
func (f *Fetcher) fetch(ctx context.Context, remotePath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", f.baseURL+"/"+remotePath, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
