package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidpress/internal/api"
)

// apiClient talks to a running vidpressd over its HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type healthReport struct {
	Status string         `json:"status"`
	Jobs   map[string]int `json:"jobs"`
}

func (c *apiClient) Health(ctx context.Context) (healthReport, error) {
	var out healthReport
	err := c.getJSON(ctx, "/health", &out)
	return out, err
}

func (c *apiClient) ListJobs(ctx context.Context) ([]api.JobResponse, error) {
	var out []api.JobResponse
	err := c.getJSON(ctx, "/api/v1/jobs", &out)
	return out, err
}

func (c *apiClient) JobDetail(ctx context.Context, jobID string) (api.JobDetailResponse, error) {
	var out api.JobDetailResponse
	err := c.getJSON(ctx, "/api/v1/jobs/"+jobID+"/detail", &out)
	return out, err
}

func (c *apiClient) ListAssets(ctx context.Context) ([]api.AssetResponse, error) {
	var out []api.AssetResponse
	err := c.getJSON(ctx, "/api/v1/overlays/assets", &out)
	return out, err
}

// SubmitJob uploads a video plus overlay JSON and returns the accepted job.
func (c *apiClient) SubmitJob(ctx context.Context, videoPath, overlaysJSON string) (api.JobResponse, error) {
	var out api.JobResponse

	file, err := os.Open(videoPath)
	if err != nil {
		return out, fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(videoPath)))
	header.Set("Content-Type", videoContentType(videoPath))
	part, err := writer.CreatePart(header)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return out, fmt.Errorf("read video: %w", err)
	}
	if err := writer.WriteField("overlays", overlaysJSON); err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}

	err = c.postMultipart(ctx, "/api/v1/jobs", &body, writer.FormDataContentType(), &out)
	return out, err
}

// UploadAsset uploads an overlay asset file.
func (c *apiClient) UploadAsset(ctx context.Context, path string) (api.AssetResponse, error) {
	var out api.AssetResponse

	file, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("open asset: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", assetContentType(path))
	part, err := writer.CreatePart(header)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return out, fmt.Errorf("read asset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}

	err = c.postMultipart(ctx, "/api/v1/overlays/assets", &body, writer.FormDataContentType(), &out)
	return out, err
}

// DownloadResult streams a finished job's output into destPath.
func (c *apiClient) DownloadResult(ctx context.Context, jobID, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/jobs/"+jobID+"/result", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		_ = dst.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("write output: %w", err)
	}
	return dst.Close()
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) postMultipart(ctx context.Context, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error.Message != "" {
		return fmt.Errorf("%s (%s)", env.Error.Message, env.Error.Code)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}

func videoContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	default:
		return "video/mp4"
	}
}

func assetContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return videoContentType(path)
	}
}
