package document

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOCRSpaceURL is the OCR.Space parse endpoint.
const DefaultOCRSpaceURL = "https://api.ocr.space/parse/image"

// ocrLanguages maps ISO 639-1 codes to OCR.Space language codes.
var ocrLanguages = map[string]string{
	"en": "eng",
	"hi": "hin",
	"es": "spa",
	"fr": "fre",
}

// OCRSpace sends documents to the OCR.Space API, for scanned PDFs and images
// that carry no text layer.
type OCRSpace struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
}

// NewOCRSpace creates an OCR.Space extractor. lang is an ISO 639-1 code;
// unknown codes fall back to English.
func NewOCRSpace(endpoint, apiKey, lang string) *OCRSpace {
	if endpoint == "" {
		endpoint = DefaultOCRSpaceURL
	}
	code, ok := ocrLanguages[lang]
	if !ok {
		code = "eng"
	}
	return &OCRSpace{
		endpoint: endpoint,
		apiKey:   apiKey,
		language: code,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OCRSpace) Name() string { return "ocrspace" }

type ocrResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	// a string or a list of strings depending on the failure
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

func (r ocrResponse) errorMessage() string {
	var list []string
	if json.Unmarshal(r.ErrorMessage, &list) == nil && len(list) > 0 {
		return list[0]
	}
	var s string
	if json.Unmarshal(r.ErrorMessage, &s) == nil && s != "" {
		return s
	}
	return "unknown OCR error"
}

func (o *OCRSpace) ExtractText(ctx context.Context, path string) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OCR.Space api key is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	form := url.Values{}
	form.Set("base64Image", "data:"+mimeType(path)+";base64,"+base64.StdEncoding.EncodeToString(data))
	form.Set("language", o.language)
	form.Set("isOverlayRequired", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("apikey", o.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr: %s", parsed.errorMessage())
	}

	pages := make([]string, 0, len(parsed.ParsedResults))
	for _, r := range parsed.ParsedResults {
		pages = append(pages, r.ParsedText)
	}
	return strings.Join(pages, "\n"), nil
}

func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/pdf"
	}
}
