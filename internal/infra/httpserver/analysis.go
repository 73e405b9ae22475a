package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	appanalysis "github.com/bryanwahyu/nutriguard/internal/application/analysis"
	appocr "github.com/bryanwahyu/nutriguard/internal/application/ocr"
	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	"github.com/bryanwahyu/nutriguard/internal/infra/report"
	"github.com/bryanwahyu/nutriguard/internal/middleware"
)

const (
	headerSource         = "X-Analysis-Source"
	headerFallbackReason = "X-Analysis-Fallback-Reason"

	maxImagesPerRequest = 10
)

// POST /api/ocr (multipart, field "image", one or more files)
func (r *Router) handleOCR(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload*maxImagesPerRequest+1<<20)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return appocr.ErrNoImages
	}
	defer req.MultipartForm.RemoveAll()

	files := req.MultipartForm.File["image"]
	if len(files) > maxImagesPerRequest {
		return badRequest("at most %d images per request", maxImagesPerRequest)
	}

	uploads := make([]appocr.Upload, 0, len(files))
	for _, fh := range files {
		up, err := r.readUpload(fh)
		if err != nil {
			return err
		}
		uploads = append(uploads, up)
	}

	ex, err := r.ocr.Extract(req.Context(), uploads)
	if len(uploads) > 0 {
		middleware.RecordOCR(len(uploads), err == nil)
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, ex)
}

func (r *Router) readUpload(fh *multipart.FileHeader) (appocr.Upload, error) {
	if fh.Size > r.maxUpload {
		return appocr.Upload{}, fmt.Errorf("%s: %w", fh.Filename, ErrImageTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return appocr.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, r.maxUpload+1))
	if err != nil {
		return appocr.Upload{}, err
	}
	if int64(len(data)) > r.maxUpload {
		return appocr.Upload{}, fmt.Errorf("%s: %w", fh.Filename, ErrImageTooLarge)
	}

	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return appocr.Upload{}, badRequest("Only image files are allowed")
	}
	return appocr.Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

// POST /api/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	body, err := readBody(w, req)
	if err != nil {
		return err
	}
	areq, err := appanalysis.DecodeRequest(body)
	if err != nil {
		return err
	}

	res, outcome, err := r.analysis.Analyze(req.Context(), areq)
	if err != nil {
		return err
	}
	middleware.RecordAnalysis(outcome)

	w.Header().Set(headerSource, string(outcome.Source))
	if reason := outcome.Reason(); reason != "" {
		w.Header().Set(headerFallbackReason, reason)
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /api/report, returns the analysis rendered as PDF
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Analysis         *analysis.Result  `json:"analysis"`
		AgeGroup         analysis.AgeGroup `json:"ageGroup"`
		HealthConditions []string          `json:"healthConditions"`
		ChildName        string            `json:"childName"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if body.Analysis == nil || strings.TrimSpace(body.Analysis.ProductName) == "" {
		return badRequest("analysis is required")
	}
	if !body.AgeGroup.Valid() {
		return badRequest("ageGroup must be one of 0-2, 3-6, 7-10")
	}

	pdf, err := report.Render(*body.Analysis, report.Context{
		ChildName:        middleware.SanitizeString(body.ChildName),
		AgeGroup:         body.AgeGroup,
		HealthConditions: analysis.UniqueConditions(body.HealthConditions),
		GeneratedAt:      r.now(),
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(*body.Analysis)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(pdf)
	return err
}
