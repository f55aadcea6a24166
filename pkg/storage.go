package pkg

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const storageDefaultBaseURL = "https://api.cloudinary.com/v1_1"

// StorageClient uploads listing thumbnails to the image CDN and releases
// them when a listing is removed.
type StorageClient struct {
	client    *http.Client
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
}

func NewStorageClient(cloudName, apiKey, apiSecret string) *StorageClient {
	return &StorageClient{
		client:    &http.Client{Timeout: 30 * time.Second},
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   storageDefaultBaseURL,
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// sign produces the CDN's request signature: SHA-1 over the sorted
// key=value pairs joined by '&', with the API secret appended.
func (c *StorageClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(c.apiSecret)
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Upload pushes image bytes and returns the stable public id and the
// retrievable URL.
func (c *StorageClient) Upload(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(map[string]string{"timestamp": ts})

	var buf strings.Builder
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", "", err
	}
	_ = w.WriteField("api_key", c.apiKey)
	_ = w.WriteField("timestamp", ts)
	_ = w.WriteField("signature", signature)
	if err := w.Close(); err != nil {
		return "", "", err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(buf.String()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("thumbnail upload: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("thumbnail upload failed: %s (%d)", string(body), resp.StatusCode)
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("parse upload response: %w", err)
	}
	return out.PublicID, out.SecureURL, nil
}

// Destroy releases a stored thumbnail by its public id.
func (c *StorageClient) Destroy(ctx context.Context, publicID string) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(map[string]string{"public_id": publicID, "timestamp": ts})

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("api_key", c.apiKey)
	form.Set("timestamp", ts)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("thumbnail destroy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("thumbnail destroy failed: %s (%d)", string(body), resp.StatusCode)
	}
	return nil
}
