package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/service"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Displays live on the same origin as the POS; admin deployments can
	// tighten this behind a reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler contains HTTP handlers
type Handler struct {
	hub      *realtime.Hub
	orders   *service.OrderService
	stations *service.StationService
	catalog  *service.CatalogService
	redis    *redisclient.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(
	hub *realtime.Hub,
	orders *service.OrderService,
	stations *service.StationService,
	catalog *service.CatalogService,
	redis *redisclient.Client,
) *Handler {
	return &Handler{
		hub:      hub,
		orders:   orders,
		stations: stations,
		catalog:  catalog,
		redis:    redis,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws", h.serveWS)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", h.createEvent)
		v1.GET("/events", h.listEvents)

		v1.POST("/categories", h.createCategory)
		v1.GET("/categories", h.listCategories)
		v1.PUT("/categories/:id", h.updateCategory)
		v1.DELETE("/categories/:id", h.deleteCategory)

		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.POST("/users", h.createUser)
		v1.GET("/users", h.listUsers)

		v1.POST("/stations", h.createStation)
		v1.GET("/stations", h.listStations)
		v1.GET("/stations/:id/lines", h.stationLines)
		v1.PUT("/stations/:id", h.updateStation)
		v1.DELETE("/stations/:id", h.deleteStation)
		v1.POST("/stations/:id/act", h.stationAct)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/lines", h.addOrderLine)
		v1.POST("/orders/:id/status", h.transitionOrder)
		v1.PUT("/lines/:id", h.updateOrderLine)
		v1.DELETE("/lines/:id", h.deleteOrderLine)
	}
}

// serveWS upgrades the connection and hands it to a realtime session. The
// session sends a full snapshot first, then live change envelopes.
func (h *Handler) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.GetLogger().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := realtime.NewSession(h.hub, conn)
	session.Run()
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests. The snapshot version
// lets reconnecting clients compare their last seen stamp and skip a full
// resync when nothing changed while they were away.
func (h *Handler) readinessCheck(c *gin.Context) {
	payload := gin.H{
		"status":      "ready",
		"subscribers": h.hub.SubscriberCount(),
		"time":        time.Now().Unix(),
	}
	if h.redis != nil {
		if version, err := h.redis.SnapshotVersion(c.Request.Context()); err == nil {
			payload["snapshot_version"] = version
		}
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) createEvent(c *gin.Context) {
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.catalog.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		serverError(c, "Failed to create event", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to list events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		serverError(c, "Failed to create category", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		serverError(c, "Failed to update category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		serverError(c, "Failed to delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		serverError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		serverError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		serverError(c, "Failed to delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createUser(c *gin.Context) {
	var req service.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.catalog.CreateUser(c.Request.Context(), &req)
	if err != nil {
		serverError(c, "Failed to create user", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.catalog.ListUsers(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createStation(c *gin.Context) {
	var req service.StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	station, err := h.stations.CreateStation(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidStation) {
			badRequest(c, err)
			return
		}
		serverError(c, "Failed to create station", err)
		return
	}
	c.JSON(http.StatusCreated, station)
}

func (h *Handler) listStations(c *gin.Context) {
	stations, err := h.stations.ListStations(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to list stations", err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *Handler) stationLines(c *gin.Context) {
	lines, err := h.stations.VisibleLines(c.Request.Context(), c.Param("id"))
	if err != nil {
		serverError(c, "Failed to compute station lines", err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *Handler) updateStation(c *gin.Context) {
	var req service.StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	station, err := h.stations.UpdateStation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidStation) {
			badRequest(c, err)
			return
		}
		serverError(c, "Failed to update station", err)
		return
	}
	c.JSON(http.StatusOK, station)
}

func (h *Handler) deleteStation(c *gin.Context) {
	if err := h.stations.DeleteStation(c.Request.Context(), c.Param("id")); err != nil {
		serverError(c, "Failed to delete station", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stationActRequest struct {
	LineID string `json:"line_id" binding:"required"`
}

func (h *Handler) stationAct(c *gin.Context) {
	var req stationActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	line, err := h.stations.Act(c.Request.Context(), c.Param("id"), req.LineID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLineNotVisible):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrIllegalTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			serverError(c, "Failed to act on line", err)
		}
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		serverError(c, "Failed to create order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	eventID := c.Query("event_id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id query parameter is required"})
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), eventID)
	if err != nil {
		serverError(c, "Failed to list orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, lines, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"lines": lines,
	})
}

func (h *Handler) addOrderLine(c *gin.Context) {
	var req service.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	line, err := h.orders.AddLine(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotEditable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		serverError(c, "Failed to add order line", err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) transitionOrder(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, models.ErrIllegalTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		serverError(c, "Failed to change order status", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) updateOrderLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	line, err := h.orders.UpdateLineQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotEditable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		serverError(c, "Failed to update order line", err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) deleteOrderLine(c *gin.Context) {
	if err := h.orders.RemoveLine(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrOrderNotEditable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		serverError(c, "Failed to delete order line", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}

func serverError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
