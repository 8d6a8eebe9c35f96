package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopapi/internal/domain"
	"shopapi/internal/service"
)

type Server struct {
	engine   *gin.Engine
	metrics  *metrics
	products *service.ProductService
	buyers   *service.BuyerService
	orders   *service.OrderService
}

func NewServer(products *service.ProductService, buyers *service.BuyerService, orders *service.OrderService) *Server {
	r := gin.New()
	m := newMetrics()
	r.Use(gin.Logger(), gin.Recovery(), m.middleware())
	s := &Server{engine: r, metrics: m, products: products, buyers: buyers, orders: orders}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.redirectHome)
	// Swagger UI
	s.engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", s.metrics.handler())

	products := s.engine.Group("/products")
	{
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)
	}

	buyers := s.engine.Group("/buyers")
	{
		buyers.POST("", s.createBuyer)
		buyers.GET(":id", s.getBuyer)
		buyers.PUT(":id", s.updateBuyer)
		buyers.DELETE(":id", s.deleteBuyer)
	}

	purchases := s.engine.Group("/purchases")
	{
		purchases.POST("", s.createOrder)
		purchases.GET(":id", s.getOrder)
		purchases.PUT(":id", s.updateOrder)
		purchases.DELETE(":id", s.cancelOrder)
	}
}

func (s *Server) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "/docs/index.html")
}

type messageResp struct {
	Message string `json:"message"`
}

// Product handlers
type productReq struct {
	Name  *string  `json:"name" binding:"required"`
	Price *float64 `json:"price" binding:"required"`
}

type productCreatedResp struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 200 {object} productCreatedResp
// @Failure 422 {object} validationResp
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	p, err := s.products.Create(c, domain.Product{Name: *req.Name, Price: *req.Price})
	if err != nil {
		abortError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, productCreatedResp{ProductID: p.ID, Name: p.Name, Price: p.Price})
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} errorResp
// @Failure 422 {object} validationResp
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	p, err := s.products.GetByID(c, id)
	if err != nil {
		abortError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Description Existence is not checked: the submitted data is echoed back.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productReq true "Product"
// @Success 200 {object} domain.Product
// @Failure 422 {object} validationResp
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	p, err := s.products.Update(c, domain.Product{ID: id, Name: *req.Name, Price: *req.Price})
	if err != nil {
		abortError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} messageResp
// @Failure 422 {object} validationResp
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	if err := s.products.Delete(c, id); err != nil {
		abortError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, messageResp{Message: "Product removed"})
}

// Buyer handlers
type buyerReq struct {
	Name  *string `json:"name" binding:"required"`
	Phone *int64  `json:"phone" binding:"required"`
}

type buyerCreatedResp struct {
	BuyerID int64  `json:"buyer_id"`
	Name    string `json:"name"`
	Phone   int64  `json:"phone"`
}

// @Summary Register buyer
// @Tags buyers
// @Accept json
// @Produce json
// @Param input body buyerReq true "Buyer"
// @Success 200 {object} buyerCreatedResp
// @Failure 422 {object} validationResp
// @Router /buyers [post]
func (s *Server) createBuyer(c *gin.Context) {
	var req buyerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	b, err := s.buyers.Create(c, domain.Buyer{Name: *req.Name, Phone: *req.Phone})
	if err != nil {
		abortError(c, err, "Buyer not found")
		return
	}
	c.JSON(http.StatusOK, buyerCreatedResp{BuyerID: b.ID, Name: b.Name, Phone: b.Phone})
}

// @Summary Get buyer by id
// @Tags buyers
// @Produce json
// @Param id path int true "Buyer ID"
// @Success 200 {object} domain.Buyer
// @Failure 404 {object} errorResp
// @Failure 422 {object} validationResp
// @Router /buyers/{id} [get]
func (s *Server) getBuyer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	b, err := s.buyers.GetByID(c, id)
	if err != nil {
		abortError(c, err, "Buyer not found")
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary Update buyer
// @Tags buyers
// @Accept json
// @Produce json
// @Param id path int true "Buyer ID"
// @Param input body buyerReq true "Buyer"
// @Success 200 {object} domain.Buyer
// @Failure 422 {object} validationResp
// @Router /buyers/{id} [put]
func (s *Server) updateBuyer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	var req buyerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	b, err := s.buyers.Update(c, domain.Buyer{ID: id, Name: *req.Name, Phone: *req.Phone})
	if err != nil {
		abortError(c, err, "Buyer not found")
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary Remove buyer
// @Description Fails with 400 while any order references the buyer.
// @Tags buyers
// @Produce json
// @Param id path int true "Buyer ID"
// @Success 200 {object} messageResp
// @Failure 400 {object} errorResp
// @Failure 422 {object} validationResp
// @Router /buyers/{id} [delete]
func (s *Server) deleteBuyer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	if err := s.buyers.Delete(c, id); err != nil {
		abortError(c, err, "Buyer not found")
		return
	}
	c.JSON(http.StatusOK, messageResp{Message: "Buyer removed"})
}

// Order handlers
type purchaseReq struct {
	CustomerID *int64 `json:"customer_id" binding:"required"`
	Notes      string `json:"notes"`
}

type orderCreatedResp struct {
	OrderID    int64  `json:"order_id"`
	Timestamp  int64  `json:"timestamp"`
	CustomerID int64  `json:"customer_id"`
	Notes      string `json:"notes"`
}

// @Summary Place order
// @Tags purchases
// @Accept json
// @Produce json
// @Param input body purchaseReq true "Purchase"
// @Success 200 {object} orderCreatedResp
// @Failure 422 {object} validationResp
// @Router /purchases [post]
func (s *Server) createOrder(c *gin.Context) {
	var req purchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	o, err := s.orders.CreateOrder(c, *req.CustomerID, req.Notes)
	if err != nil {
		abortError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, orderCreatedResp{OrderID: o.ID, Timestamp: o.Timestamp, CustomerID: o.CustomerID, Notes: o.Notes})
}

// @Summary Get order by id
// @Tags purchases
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} errorResp
// @Failure 422 {object} validationResp
// @Router /purchases/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	o, err := s.orders.GetOrder(c, id)
	if err != nil {
		abortError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Update order
// @Description Resets the timestamp to the current time.
// @Tags purchases
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body purchaseReq true "Purchase"
// @Success 200 {object} domain.Order
// @Failure 422 {object} validationResp
// @Router /purchases/{id} [put]
func (s *Server) updateOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	var req purchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}
	o, err := s.orders.UpdateOrder(c, id, *req.CustomerID, req.Notes)
	if err != nil {
		abortError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order
// @Tags purchases
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} messageResp
// @Failure 422 {object} validationResp
// @Router /purchases/{id} [delete]
func (s *Server) cancelOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortBadID(c)
		return
	}
	if err := s.orders.CancelOrder(c, id); err != nil {
		abortError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, messageResp{Message: "Order successfully cancelled"})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
