package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nycstandup/showcatalog/internal/show"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 500

type showsResponse struct {
	Success     bool          `json:"success"`
	Count       int           `json:"count"`
	Data        []show.Record `json:"data"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

type venuesResponse struct {
	Venues []show.Venue `json:"venues"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) listShows(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	shows, err := s.store.GetShows(ctx, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "database error").SetInternal(err)
	}
	if shows == nil {
		shows = []show.Record{}
	}

	updated, ok, err := s.store.LastUpdated(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "database error").SetInternal(err)
	}
	if !ok {
		updated = s.now()
	}

	return c.JSON(http.StatusOK, showsResponse{
		Success:     true,
		Count:       len(shows),
		Data:        shows,
		LastUpdated: updated.UTC(),
	})
}

func (s *Server) listVenues(c echo.Context) error {
	venues, err := s.store.Venues(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "database error").SetInternal(err)
	}
	if venues == nil {
		venues = []show.Venue{}
	}
	return c.JSON(http.StatusOK, venuesResponse{Venues: venues})
}

// parseFilter reads the catalog filter from the query string.
func parseFilter(c echo.Context) (show.Filter, error) {
	f := show.Filter{
		Today:        truthy(c.QueryParam("today")),
		ThisWeekend:  truthy(c.QueryParam("weekend")),
		Venue:        strings.TrimSpace(c.QueryParam("venue")),
		Neighborhood: strings.TrimSpace(c.QueryParam("neighborhood")),
		Date:         strings.TrimSpace(c.QueryParam("date")),
	}

	if f.Date != "" {
		if _, err := time.Parse(show.DateLayout, f.Date); err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		f.Limit = n
	}
	return f, nil
}

// truthy treats any value other than empty, 0, false or no as set.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
