package controller

import (
	"snapshop-be/internal/dto"
	"snapshop-be/internal/pkg/serverutils"
	"snapshop-be/internal/service"
	ws "snapshop-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Detect(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	hub           *ws.Hub
}

func NewSearchController(searchService service.ISearchService, hub *ws.Hub) ISearchController {
	return &searchController{
		searchService: searchService,
		hub:           hub,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search")
	h.Post("", c.Search)
	h.Post("/detect", c.Detect)

	h.Use("/stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/stream/:request_id", websocket.New(c.stream))
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.searchService.Search(ctx.Context(), req)
	if err != nil {
		if err == service.ErrEmptySearchRequest {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *searchController) Detect(ctx *fiber.Ctx) error {
	var req dto.DetectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.searchService.Detect(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res))
}

// stream upgrades the connection and follows one request's progress frames.
// Register blocks on the read pump until the client disconnects.
func (c *searchController) stream(conn *websocket.Conn) {
	client := &ws.Client{
		Hub:       c.hub,
		Conn:      conn,
		RequestID: conn.Params("request_id"),
		Send:      make(chan []byte, 256),
	}
	c.hub.Register(client)
}
