package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/tres-devtools-go/assets"
	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/telemetry"
)

const keepaliveInterval = 15 * time.Second

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type telemetryResponse struct {
	FPS      telemetry.SamplerState `json:"fps"`
	Memory   telemetry.MemoryState  `json:"memory"`
	Renderer devtools.RendererState `json:"renderer"`
	Version  uint64                 `json:"version"`
}

type assetsResponse struct {
	Assets []assets.Record `json:"assets"`
	Counts map[string]int  `json:"counts"`
}

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleHTTPInfo)
	if exporter := s.GetStore().Exporter(); exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}

	panel := e.Group(s.config.Panel.Route)
	panel.GET("", s.handlePanelInfo)
	panel.GET("/api/state", s.handleState)
	panel.GET("/api/scene", s.handleScene)
	panel.GET("/api/assets", s.handleAssets)
	panel.GET("/api/assets/:id", s.handleAsset)
	panel.GET("/api/telemetry", s.handleTelemetry)
	panel.GET("/api/observers", s.handleObservers)
	panel.POST("/api/invalidate", s.handleInvalidate)
	panel.GET("/api/events", s.handleEvents)
}

func (s *Server) handleHTTPInfo(c echo.Context) error {
	logger.Debug("HTTP info requested", "remote_addr", c.RealIP())
	info := map[string]any{
		"name":        s.config.Name,
		"version":     s.config.Version,
		"type":        "tres-devtools",
		"panel_route": s.config.Panel.Route,
		"metrics":     s.GetStore().Exporter() != nil,
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handlePanelInfo(c echo.Context) error {
	route := s.config.Panel.Route
	return c.JSON(http.StatusOK, map[string]any{
		"state":      route + "/api/state",
		"scene":      route + "/api/scene",
		"assets":     route + "/api/assets",
		"telemetry":  route + "/api/telemetry",
		"events":     route + "/api/events",
		"invalidate": route + "/api/invalidate",
		"observers":  s.observers.Count(),
	})
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.GetStore().Snapshot())
}

func (s *Server) handleScene(c echo.Context) error {
	graph, ok, reason := s.GetStore().Graph()
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "No scene is mirrored", Reason: reason})
	}
	return c.JSON(http.StatusOK, graph)
}

func (s *Server) handleAssets(c echo.Context) error {
	kind := assets.Kind(strings.ToLower(strings.TrimSpace(c.QueryParam("kind"))))
	if kind != "" && !kind.Valid() {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Unknown asset kind", Reason: "asset_kind_invalid"})
	}

	records := s.GetStore().Snapshot().Scene.Assets
	out := make([]assets.Record, 0, len(records))
	counts := make(map[string]int, 3)
	for _, record := range records {
		counts[string(record.Kind)]++
		if kind == "" || record.Kind == kind {
			out = append(out, record)
		}
	}
	return c.JSON(http.StatusOK, assetsResponse{Assets: out, Counts: counts})
}

func (s *Server) handleAsset(c echo.Context) error {
	record, ok, reason := s.GetStore().Asset(c.Param("id"))
	if !ok {
		status := http.StatusNotFound
		if reason == "asset_id_missing" {
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{Error: "Asset not found", Reason: reason})
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleTelemetry(c echo.Context) error {
	state := s.GetStore().Snapshot()
	return c.JSON(http.StatusOK, telemetryResponse{
		FPS:      state.FPS,
		Memory:   state.Memory,
		Renderer: state.Renderer,
		Version:  state.Version,
	})
}

func (s *Server) handleObservers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"observers": s.observers.List()})
}

func (s *Server) handleInvalidate(c echo.Context) error {
	logger.Info("Scene mirror invalidated", "remote_addr", c.RealIP())
	s.GetStore().Invalidate()
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleEvents(c echo.Context) error {
	logger.Info("Devtools event stream requested", "remote_addr", c.RealIP())

	if !acceptsEventStream(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Accept header must include text/event-stream"})
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "SSE stream is not available"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	streamCtx, stopStream := context.WithCancel(c.Request().Context())
	defer stopStream()

	transport := NewStreamableHTTPTransport(c.Response().Writer, flusher, stopStream)
	if err := transport.SendComment("stream opened"); err != nil {
		logger.Warn("Failed to write initial SSE comment", "error", err)
		return nil
	}

	// Register only after headers and the first frame are out.
	observerID := s.observers.Register(c.RealIP(), transport)
	defer s.observers.Remove(observerID)

	// A reconnecting panel that already holds the current version is not re-sent it.
	var lastSent uint64
	hasSent := false
	if raw := strings.TrimSpace(c.Request().Header.Get("Last-Event-ID")); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			lastSent, hasSent = v, true
		}
	}

	poll := time.NewTicker(time.Duration(s.config.Panel.PollIntervalMS) * time.Millisecond)
	defer poll.Stop()
	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	push := func() bool {
		store := s.GetStore()
		if hasSent && store.Version() == lastSent {
			return true
		}
		state := store.Snapshot()
		if err := transport.SendVersioned("state", state.Version, state); err != nil {
			logger.Debug("Event stream closed", "observer_id", observerID, "error", err)
			return false
		}
		lastSent, hasSent = state.Version, true
		s.observers.Touch(observerID, state.Version)
		return true
	}

	if !push() {
		return nil
	}
	for {
		select {
		case <-streamCtx.Done():
			return nil
		case <-poll.C:
			if !push() {
				return nil
			}
		case <-keepalive.C:
			if err := transport.SendComment("keepalive"); err != nil {
				return nil
			}
			s.observers.Touch(observerID, lastSent)
		}
	}
}

func acceptsEventStream(acceptHeader string) bool {
	for _, part := range strings.Split(acceptHeader, ",") {
		mime := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.EqualFold(mime, "text/event-stream") || mime == "*/*" {
			return true
		}
	}
	return false
}
