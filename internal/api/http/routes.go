package httpapi

import (
	_ "embed"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-map/internal/common"
	"github.com/i474232898/weather-map/internal/view"
	"github.com/i474232898/weather-map/internal/weather"
)

//go:embed static/index.html
var indexHTML []byte

var validate = validator.New()

// Catalog lists the values offered by the page's dropdowns.
type Catalog interface {
	CountryCodes() []string
	Timestamps() []int64
}

// Option is one dropdown entry.
type Option[T any] struct {
	Label string `json:"label"`
	Value T      `json:"value"`
}

// Options is the body of GET /api/v1/options.
type Options struct {
	CountryCodes []Option[string] `json:"countryCodes"`
	Timestamps   []Option[int64]  `json:"timestamps"`
}

// RegisterRoutes wires the page and its API into the Fiber app.
func RegisterRoutes(app *fiber.App, renderer *view.Renderer, catalog Catalog) {
	opts := buildOptions(catalog)

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(indexHTML)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/options", func(c *fiber.Ctx) error {
		return c.JSON(opts)
	})

	v1.Get("/scene", func(c *fiber.Ctx) error {
		var q sceneQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		filter := weather.NewFilter(q.Countries, q.Timestamps)
		return renderer.Render(filter, func(fig *view.Figure) error {
			return c.JSON(fig)
		})
	})
}

func buildOptions(catalog Catalog) Options {
	codes := catalog.CountryCodes()
	stamps := catalog.Timestamps()

	opts := Options{
		CountryCodes: make([]Option[string], 0, len(codes)),
		Timestamps:   make([]Option[int64], 0, len(stamps)),
	}
	for _, code := range codes {
		opts.CountryCodes = append(opts.CountryCodes, Option[string]{Label: code, Value: code})
	}
	for _, ts := range stamps {
		opts.Timestamps = append(opts.Timestamps, Option[int64]{
			Label: time.Unix(ts, 0).UTC().Format(time.DateTime),
			Value: ts,
		})
	}
	return opts
}

// sceneQuery holds the filter selections of a scene request.
type sceneQuery struct {
	Countries  []string `validate:"dive,printascii,max=16"`
	Timestamps []int64
}

// bind accepts repeated parameters as well as comma-separated lists.
func (q *sceneQuery) bind(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()

	var countries []string
	for _, v := range args.PeekMulti("country") {
		countries = append(countries, string(v))
	}
	q.Countries = common.SplitList(countries...)

	var stamps []string
	for _, v := range args.PeekMulti("timestamp") {
		stamps = append(stamps, string(v))
	}
	for _, s := range common.SplitList(stamps...) {
		ts, err := parseTime(s)
		if err != nil {
			return err
		}
		q.Timestamps = append(q.Timestamps, ts.Unix())
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
