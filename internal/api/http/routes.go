package httpapi

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/owm-weather-mock/internal/owmxml"
	"github.com/i474232898/owm-weather-mock/internal/proxy"
	"github.com/i474232898/owm-weather-mock/internal/weather"
)

var validate = validator.New()

const (
	weatherPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"

	// ForecastSteps and ForecastStep shape the locally generated forecast.
	ForecastSteps = 20
	ForecastStep  = 3 * time.Hour
)

// Upstream forwards GET requests in PROXY mode.
type Upstream interface {
	Fetch(ctx context.Context, endpoint proxy.Endpoint, lat, lon float64) ([]byte, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. A nil upstream
// means LOCAL mode; mutation endpoints are always served locally.
func RegisterRoutes(app *fiber.App, service *weather.Service, upstream Upstream) {
	app.Get(weatherPath, func(c *fiber.Ctx) error {
		q, err := parseObservationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		log.Printf("INFO: %s lat=%v lon=%v APPID=%s", weatherPath, *q.Lat, *q.Lon, q.AppID)
		setResponseHeaders(c, weatherPath, q)

		if upstream != nil {
			return forward(c, upstream, proxy.EndpointWeather, q)
		}

		body, err := owmxml.MarshalCurrent(service.GetWeather(*q.Lat, *q.Lon, q.at()))
		if err != nil {
			return err
		}
		return c.Send(body)
	})

	app.Get(forecastPath, func(c *fiber.Ctx) error {
		q, err := parseObservationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		log.Printf("INFO: %s lat=%v lon=%v APPID=%s", forecastPath, *q.Lat, *q.Lon, q.AppID)
		setResponseHeaders(c, forecastPath, q)

		if upstream != nil {
			return forward(c, upstream, proxy.EndpointForecast, q)
		}

		forecast := service.GetForecast(*q.Lat, *q.Lon, ForecastStep, ForecastSteps, q.at())
		body, err := owmxml.MarshalForecast(forecast)
		if err != nil {
			return err
		}
		return c.Send(body)
	})

	w := app.Group("/weather")

	w.Post("/create/conditions", func(c *fiber.Ctx) error {
		loc, err := parseOptionalLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var req createConditionsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid schedule: "+err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid schedule: "+err.Error())
		}

		sched, err := service.CreateFromConditions(loc, req.MinutesBetweenSamples, req.toConditions())
		if err != nil {
			return err
		}
		return c.JSON(newScheduleResponse(sched, scheduleKey(loc)))
	})

	w.Put("/create/slots", func(c *fiber.Ctx) error {
		loc, err := parseOptionalLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var req slotsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid schedule: "+err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid schedule: "+err.Error())
		}

		sched, err := service.CreateFromSlots(loc, req.SlotLength, req.Slots)
		if err != nil {
			return err
		}
		return c.JSON(newScheduleResponse(sched, scheduleKey(loc)))
	})

	w.Get("/schedule", func(c *fiber.Ctx) error {
		loc, err := parseOptionalLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sched, key := service.GlobalSchedule()
		if loc != nil {
			sched, key = service.ScheduleFor(loc.Lat, loc.Lon)
		}
		return c.JSON(newScheduleResponse(sched, key))
	})
}

// setResponseHeaders applies the headers the upstream service sends on GET endpoints.
func setResponseHeaders(c *fiber.Ctx, endpoint string, q observationQuery) {
	c.Set(fiber.HeaderServer, "openresty")
	c.Set("X-Cache-Key", cacheKey(endpoint, q))
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
}

// forward relays the upstream body verbatim; failures become 502.
func forward(c *fiber.Ctx, upstream Upstream, endpoint proxy.Endpoint, q observationQuery) error {
	body, err := upstream.Fetch(c.UserContext(), endpoint, *q.Lat, *q.Lon)
	if err != nil {
		msg := proxy.ErrUpstreamUnavailable.Error()
		var ue *proxy.UpstreamError
		if errors.As(err, &ue) {
			msg = ue.Error()
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusBadGateway).SendString(msg)
	}
	log.Printf("INFO: got %s from weather server", endpoint)
	return c.Send(body)
}

// ErrorHandler renders errors as short plain-text bodies. Unanticipated errors
// are logged with a stack trace.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, weather.ErrInvalidSchedule):
		code = fiber.StatusBadRequest
	case errors.Is(err, proxy.ErrUpstreamUnavailable):
		code = fiber.StatusBadGateway
	}

	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v\n%s", c.Method(), c.OriginalURL(), err, debug.Stack())
		msg = "internal error"
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(msg)
}
