// Package storage archives customer attachments into a Drive folder.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

// Client fetches attachment binaries and uploads them to the object store.
type Client struct {
	httpClient     *http.Client
	uploadBaseURL  string
	accessToken    string
	parentFolderID string
	logger         *zap.Logger
}

// NewClient creates a storage client. parentFolderID is the destination
// folder for every upload.
func NewClient(uploadBaseURL, accessToken, parentFolderID string, timeout time.Duration) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		uploadBaseURL:  uploadBaseURL,
		accessToken:    accessToken,
		parentFolderID: parentFolderID,
		logger:         util.GetLogger(),
	}
}

// Fetch downloads the attachment bytes from the channel's media URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("attachment fetch rejected: status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment body: %w", err)
	}
	return data, nil
}

type fileMetadata struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
}

// Upload stores data under name in the configured parent folder using a
// multipart/related Drive upload.
func (c *Client) Upload(ctx context.Context, name string, data []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("failed to create metadata part: %w", err)
	}
	if err := json.NewEncoder(metaPart).Encode(fileMetadata{Name: name, Parents: []string{c.parentFolderID}}); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "application/octet-stream")
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return fmt.Errorf("failed to create media part: %w", err)
	}
	if _, err := mediaPart.Write(data); err != nil {
		return fmt.Errorf("failed to write media part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload body: %w", err)
	}

	endpoint := c.uploadBaseURL + "/upload/drive/v3/files?uploadType=multipart&fields=id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected: status=%d", resp.StatusCode)
	}

	c.logger.Info("Attachment archived", zap.String("name", name))
	return nil
}
