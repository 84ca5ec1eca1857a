// Package jobsource fetches job descriptions from the hh.ru API.
package jobsource

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL          = "https://api.hh.ru"
	userAgent       = "spigell/hh-screener (spigelly@gmail.com)"
	contentType     = "application/json"
	contentEncoding = "gzip"
	defaultTimeout  = 10 * time.Second
)

var ErrNotFound = errors.New("vacancy not found")

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client. token is optional: public vacancies are readable without it.
func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Vacancy fetches one vacancy by id.
func (c *Client) Vacancy(ctx context.Context, id string) (*Vacancy, error) {
	if id == "" {
		return nil, errors.New("empty vacancy id")
	}

	var v Vacancy
	if err := c.getJSON(ctx, c.APIURL+"/vacancies/"+url.PathEscape(id), &v); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	c.logger.Debug("got vacancy from HH.ru",
		zap.String("id", v.ID),
		zap.String("name", v.Name),
		zap.Int("key_skills", len(v.KeySkills)),
	)
	return &v, nil
}

func (c *Client) getJSON(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	if err := json.NewDecoder(reader).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	// set explicitly so the transport leaves the body compressed
	req.Header.Set("Accept-Encoding", contentEncoding)
}
