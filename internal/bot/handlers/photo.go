package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
)

const (
	photoDownloadTimeout = 30 * time.Second
	maxPhotoBytes        = 10 * 1024 * 1024
)

// DownloadPhoto retrieves a photo's raw bytes from the Telegram file API.
func DownloadPhoto(ctx context.Context, b *bot.Bot, token, fileID string) (data []byte, err error) {
	if token == "" {
		return nil, fmt.Errorf("empty token provided")
	}
	if fileID == "" {
		return nil, fmt.Errorf("empty fileID provided")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, fmt.Errorf("empty file path returned from Telegram")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty file data")
	}

	return data, nil
}
