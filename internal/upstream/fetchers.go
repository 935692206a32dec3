package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/skyfeed/aggregator/internal/model"
)

// issResponse mirrors open-notify's iss-now payload.
// Coordinates arrive as numeric strings; json.Number accepts either form.
type issResponse struct {
	Position struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	} `json:"iss_position"`
	Timestamp json.Number `json:"timestamp"`
}

type launchResponse struct {
	Name    *string         `json:"name"`
	DateUTC *string         `json:"date_utc"`
	Success json.RawMessage `json:"success"`
}

type catFactResponse struct {
	Fact *string `json:"fact"`
}

type fxResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

// FetchISS returns the current ISS position.
func (c *Client) FetchISS(ctx context.Context) (model.ISSPosition, error) {
	var resp issResponse
	if err := c.getJSON(ctx, c.endpoints.ISS, &resp); err != nil {
		return model.ISSPosition{}, err
	}

	lat, err := parseFloat("iss_position.latitude", resp.Position.Latitude)
	if err != nil {
		return model.ISSPosition{}, err
	}
	lon, err := parseFloat("iss_position.longitude", resp.Position.Longitude)
	if err != nil {
		return model.ISSPosition{}, err
	}
	ts, err := parseInt("timestamp", resp.Timestamp)
	if err != nil {
		return model.ISSPosition{}, err
	}

	return model.ISSPosition{Lat: lat, Lon: lon, Timestamp: ts}, nil
}

// FetchLatestLaunch returns the most recent SpaceX launch.
// Absent fields fall back to the launch defaults; a null success stays unknown.
// A success that is not a bool is treated as absent.
func (c *Client) FetchLatestLaunch(ctx context.Context) (model.Launch, error) {
	var resp launchResponse
	if err := c.getJSON(ctx, c.endpoints.SpaceX, &resp); err != nil {
		return model.Launch{}, err
	}

	launch := model.DefaultLaunch()
	if resp.Name != nil {
		launch.Name = *resp.Name
	}
	if resp.DateUTC != nil {
		launch.DateUTC = *resp.DateUTC
	}

	switch {
	case len(resp.Success) == 0:
		// keep default
	case bytes.Equal(resp.Success, []byte("null")):
		launch.Success = nil
	default:
		var ok bool
		if err := json.Unmarshal(resp.Success, &ok); err == nil {
			launch.Success = &ok
		}
	}

	return launch, nil
}

// FetchCatFact returns a random cat fact.
func (c *Client) FetchCatFact(ctx context.Context) (string, error) {
	var resp catFactResponse
	if err := c.getJSON(ctx, c.endpoints.CatFact, &resp); err != nil {
		return "", err
	}
	if resp.Fact == nil {
		return model.DefaultCatFact, nil
	}
	return *resp.Fact, nil
}

// FetchEURUSD returns the latest EUR to USD exchange rate.
func (c *Client) FetchEURUSD(ctx context.Context) (float64, error) {
	var resp fxResponse
	if err := c.getJSON(ctx, c.endpoints.FX, &resp); err != nil {
		return 0, err
	}
	rate, ok := resp.Rates["USD"]
	if !ok {
		return 0, fmt.Errorf("%w: rates.USD", ErrMissingField)
	}
	return parseFloat("rates.USD", rate)
}

func parseFloat(field string, n json.Number) (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return v, nil
}

func parseInt(field string, n json.Number) (int64, error) {
	if n == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return int64(f), nil
}
