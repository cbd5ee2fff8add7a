// Package client is a small Go client for the share API, for tooling that
// wants to stash or fetch generated DCR JSON without going through the UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrNotFound           = errors.New("share entry not found")
	ErrUnexpectedResponse = errors.New("unexpected response code")
)

type Client struct {
	Server string
	HTTP   *http.Client
}

func New(server string) *Client {
	return &Client{
		Server: server,
		HTTP:   &http.Client{},
	}
}

type shareRequest struct {
	JSON string `json:"json"`
}

type shareResponse struct {
	ID string `json:"id"`
}

// Store uploads json and returns the share ID.
func (c *Client) Store(ctx context.Context, dcrJSON string) (string, error) {
	bs, err := json.Marshal(&shareRequest{JSON: dcrJSON})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formatURL("/api/dcr"), bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedResponse, res.StatusCode)
	}

	var sr shareResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return "", err
	}
	return sr.ID, nil
}

// Get fetches the JSON stored under id. Misses and expired entries come back
// as ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.formatURL("/api/dcr/"+id), nil)
	if err != nil {
		return "", err
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedResponse, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Update overwrites the entry under id, creating it if unknown.
func (c *Client) Update(ctx context.Context, id, dcrJSON string) error {
	bs, err := json.Marshal(&shareRequest{JSON: dcrJSON})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.formatURL("/api/dcr/"+id), bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: %d", ErrUnexpectedResponse, res.StatusCode)
	}
	return nil
}

func (c *Client) formatURL(path string) string {
	return fmt.Sprintf("%s%s", c.Server, path)
}
