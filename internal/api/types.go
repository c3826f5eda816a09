package api

import (
	"time"

	"vidpress/internal/overlay"
	"vidpress/internal/queue"
)

// JobResponse is the summary view returned by job creation and status calls.
type JobResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	Progress  float64 `json:"progress"`
	ResultURL string  `json:"result_url,omitempty"`
}

// JobDetailResponse includes the overlay definitions and file paths.
type JobDetailResponse struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Message    string            `json:"message,omitempty"`
	Progress   float64           `json:"progress"`
	Overlays   []overlay.Overlay `json:"overlays"`
	InputPath  string            `json:"input_path"`
	OutputPath string            `json:"output_path,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// AssetResponse describes one uploaded overlay asset. Filename is what
// overlay definitions reference in their content field.
type AssetResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	Kind         string    `json:"type"`
	Path         string    `json:"path"`
	CreatedAt    time.Time `json:"created_at"`
}

func jobResponse(job *queue.Job) JobResponse {
	resp := JobResponse{
		ID:       job.ID,
		Status:   string(job.Status),
		Message:  job.Message,
		Progress: job.Progress,
	}
	if job.Status == queue.StatusDone && job.OutputPath != "" {
		resp.ResultURL = "/api/v1/jobs/" + job.ID + "/result"
	}
	return resp
}

func jobDetailResponse(job *queue.Job) (JobDetailResponse, error) {
	overlays, err := overlay.DecodeStored(job.OverlaysJSON)
	if err != nil {
		return JobDetailResponse{}, err
	}
	if overlays == nil {
		overlays = []overlay.Overlay{}
	}
	return JobDetailResponse{
		ID:         job.ID,
		Status:     string(job.Status),
		Message:    job.Message,
		Progress:   job.Progress,
		Overlays:   overlays,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}, nil
}

func assetResponse(asset *queue.Asset) AssetResponse {
	return AssetResponse{
		ID:           asset.ID,
		Filename:     asset.Filename,
		OriginalName: asset.OriginalName,
		Kind:         asset.Kind,
		Path:         asset.Path,
		CreatedAt:    asset.CreatedAt,
	}
}
