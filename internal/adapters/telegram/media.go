package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/scrape/domain"
)

// Download retrieves one media artifact into dir as <handle>_<id>.<ext>,
// where ext is the declared MIME subtype, defaulting to jpg
func (c *Client) Download(ctx context.Context, m domain.Media, dir, handle string, msgID int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", perr.MediaDownloadFailedf("create media dir %s: %v", dir, err)
	}

	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: m.FileID})
	if err != nil {
		return "", perr.MediaDownloadFailedf("get file %s: %v", m.FileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.token), nil)
	if err != nil {
		return "", perr.MediaDownloadFailedf("build request: %v", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", perr.MediaDownloadFailedf("download %s: %v", m.FileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", perr.MediaDownloadFailedf("download %s: unexpected status %d", m.FileID, resp.StatusCode)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.%s", handle, msgID, extFor(m.MimeType)))
	out, err := os.Create(path)
	if err != nil {
		return "", perr.MediaDownloadFailedf("create %s: %v", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", perr.MediaDownloadFailedf("write %s: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return "", perr.MediaDownloadFailedf("close %s: %v", path, err)
	}
	return path, nil
}

// extFor maps a MIME type to the file extension used in media names;
// an undeclared type defaults to jpg
func extFor(mimeType string) string {
	if idx := strings.LastIndex(mimeType, "/"); idx >= 0 && idx < len(mimeType)-1 {
		return mimeType[idx+1:]
	}
	return "jpg"
}
