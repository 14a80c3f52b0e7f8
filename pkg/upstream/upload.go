package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// imageSource holds fetched image bytes and their detected content type.
type imageSource struct {
	data        []byte
	contentType string
	fileName    string
}

// UploadResource uploads an image to the provider's resource storage so it
// can be attached to a message. The source may be an http(s) URL, a data
// URI with base64 payload, or a local file path. The upload runs in three
// steps: pre-sign, direct PUT to the signed URL, and completion.
func (c *Client) UploadResource(ctx context.Context, source string) (*Resource, error) {
	src, err := c.fetchImageSource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read image source: %w", err)
	}

	resourceID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	fileName := withExtension(src.fileName, src.contentType)

	presign, err := c.uploadPresign(ctx, resourceID, fileName, len(src.data), src.contentType)
	if err != nil {
		return nil, err
	}

	if err := c.uploadPut(ctx, presign.url, presign.headers, src.data, src.contentType); err != nil {
		return nil, err
	}

	finalURL, finalPath, err := c.uploadComplete(ctx, presign.id)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "resource uploaded",
		"file_name", fileName,
		"size", len(src.data),
	)

	return &Resource{
		ID:   resourceID,
		Name: fileName,
		Size: len(src.data),
		URL:  finalURL,
		Path: finalPath,
	}, nil
}

// fetchImageSource resolves the source into raw bytes and a content type.
func (c *Client) fetchImageSource(ctx context.Context, source string) (*imageSource, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return decodeDataURI(source)

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		req, err := http.NewRequestWithContext(ctx, "GET", source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.transport.StreamingClient().Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return nil, err
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" || !strings.HasPrefix(contentType, "image/") {
			contentType = http.DetectContentType(data)
		}
		return &imageSource{data: data, contentType: contentType, fileName: "upload.jpg"}, nil

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		return &imageSource{
			data:        data,
			contentType: http.DetectContentType(data),
			fileName:    filepath.Base(source),
		}, nil
	}
}

// decodeDataURI decodes a data: URI with base64 payload.
func decodeDataURI(uri string) (*imageSource, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("malformed data URI")
	}

	contentType := "image/jpeg"
	if mediaType, _, _ := strings.Cut(meta, ";"); mediaType != "" {
		contentType = mediaType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return &imageSource{data: data, contentType: contentType, fileName: "upload.jpg"}, nil
}

// presignResult carries the signed PUT target from the pre-sign step.
type presignResult struct {
	id      string
	url     string
	headers map[string]string
}

func (c *Client) uploadPresign(ctx context.Context, resourceID, fileName string, fileSize int, contentType string) (*presignResult, error) {
	url := c.cfg.UploaderBaseURL + "/api/upload/pre-sign"
	headers := c.buildHeaders(headerSpec{
		referer:        c.cfg.BaseURL + "/",
		acceptLanguage: "zh",
		secFetchSite:   "cross-site",
	})

	body, _ := json.Marshal(map[string]any{
		"id":           resourceID,
		"category":     74,
		"content_type": contentType,
		"file_name":    fileName,
		"file_size":    fileSize,
		"name":         fileName,
		"size":         fileSize,
	})

	envelope, err := c.transport.DoJSON(ctx, "upload-presign", "POST", url, body, headers)
	if err != nil {
		return nil, err
	}

	data := envelope.Get("data")
	signedURL := data.Get("pre_signs.0.url").String()
	if signedURL == "" {
		return nil, &ParseError{
			Operation:   "upload-presign",
			RawResponse: truncate(envelope.Raw, 512),
		}
	}

	signedHeaders := make(map[string]string)
	data.Get("pre_signs.0.headers").ForEach(func(key, value gjson.Result) bool {
		signedHeaders[key.String()] = value.String()
		return true
	})

	return &presignResult{
		id:      data.Get("id").String(),
		url:     signedURL,
		headers: signedHeaders,
	}, nil
}

// uploadPut PUTs the image bytes directly to the signed storage URL. Only
// the headers the signature covers are sent; extras break validation.
func (c *Client) uploadPut(ctx context.Context, url string, signedHeaders map[string]string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))
	for key, value := range signedHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.transport.StreamingClient().Do(req)
	if err != nil {
		return &UpstreamError{Operation: "upload-put", Message: "direct upload failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			Operation:  "upload-put",
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}
	}
	return nil
}

func (c *Client) uploadComplete(ctx context.Context, resourceID string) (url, path string, err error) {
	endpoint := c.cfg.UploaderBaseURL + "/api/upload/complete"
	headers := c.buildHeaders(headerSpec{
		referer:        c.cfg.BaseURL + "/",
		acceptLanguage: "zh",
		secFetchSite:   "cross-site",
	})

	body, _ := json.Marshal(map[string]any{"id": resourceID})
	envelope, err := c.transport.DoJSON(ctx, "upload-complete", "POST", endpoint, body, headers)
	if err != nil {
		return "", "", err
	}

	if envelope.Get("status.code").Int() != 10000 {
		return "", "", &UpstreamError{
			Operation: "upload-complete",
			Message:   truncate(envelope.Raw, 512),
		}
	}

	url = envelope.Get("data.url").String()
	if url == "" {
		return "", "", &ParseError{
			Operation:   "upload-complete",
			RawResponse: truncate(envelope.Raw, 512),
		}
	}
	return url, envelope.Get("data.path").String(), nil
}

// withExtension aligns the file name's extension with the detected content
// type.
func withExtension(fileName, contentType string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	switch contentType {
	case "image/png":
		return base + ".png"
	case "image/gif":
		return base + ".gif"
	case "image/webp":
		return base + ".webp"
	default:
		return base + ".jpg"
	}
}
