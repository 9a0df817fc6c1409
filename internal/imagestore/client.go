// Package imagestore talks to the external image host used for product photos.
package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrUnavailable = errors.New("image store unavailable")

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Client struct {
	baseURL string
	http    *http.Client
	uploads *gobreaker.CircuitBreaker[Image]
	deletes *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		uploads: gobreaker.NewCircuitBreaker[Image](settings("imagestore-upload")),
		deletes: gobreaker.NewCircuitBreaker[struct{}](settings("imagestore-delete")),
	}
}

func settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	}
}

// Upload posts the file as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (Image, error) {
	img, err := c.uploads.Execute(func() (Image, error) {
		return c.upload(ctx, filename, body)
	})
	return img, breakerErr(err)
}

func (c *Client) upload(ctx context.Context, filename string, body io.Reader) (Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Image{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images", &buf)
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("post image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Image{}, statusErr(resp)
	}

	var img Image
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil {
		return Image{}, fmt.Errorf("decode image response: %w", err)
	}
	if img.URL == "" || img.PublicID == "" {
		return Image{}, errors.New("image response missing url or publicId")
	}
	return img, nil
}

// Delete removes an image. A 404 counts as already deleted.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	_, err := c.deletes.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
			c.baseURL+"/images/"+url.PathEscape(publicID), nil)
		if err != nil {
			return struct{}{}, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("delete image: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
			return struct{}{}, nil
		default:
			return struct{}{}, statusErr(resp)
		}
	})
	return breakerErr(err)
}

func statusErr(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("image store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
