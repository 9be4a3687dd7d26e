package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/taller-ecom/docs"
	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/auth"
	"github.com/MikeMC777/taller-ecom/internal/httpx"
	"github.com/MikeMC777/taller-ecom/internal/shop"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

type routerDeps struct {
	svc     *shop.Service
	tokens  *auth.Tokens
	gw      store.Gateway
	reg     *prometheus.Registry
	log     *zap.Logger
	timeout time.Duration
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.log), httpx.NewMetrics(d.reg).Handler(), httpx.Timeout(d.timeout))

	r.GET("/healthz", healthHandler(d.gw))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.reg, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/login", loginHandler(d.svc, d.tokens))

	authed := httpx.Auth(d.tokens)
	svc := d.svc

	r.GET("/customers", listCustomersHandler(svc))
	r.POST("/customers", createCustomerHandler(svc))
	r.GET("/customers/:customer_id", getCustomerHandler(svc))
	r.PUT("/customers/:customer_id", authed, replaceCustomerHandler(svc))
	r.PATCH("/customers/:customer_id", authed, patchCustomerHandler(svc))
	r.DELETE("/customers/:customer_id", authed, deleteCustomerHandler(svc))

	services := r.Group("/customers/:customer_id/services")
	services.GET("", listServicesHandler(svc))
	services.POST("", authed, createServiceHandler(svc))
	services.GET("/:service_id", getServiceHandler(svc))
	services.PUT("/:service_id", authed, replaceServiceHandler(svc))
	services.PATCH("/:service_id", authed, patchServiceHandler(svc))
	services.DELETE("/:service_id", authed, deleteServiceHandler(svc))

	repairs := services.Group("/:service_id/repairs")
	repairs.GET("", listRepairsHandler(svc))
	repairs.POST("", authed, createRepairHandler(svc))
	repairs.GET("/:repair_id", getRepairHandler(svc))
	repairs.PUT("/:repair_id", authed, replaceRepairHandler(svc))
	repairs.PATCH("/:repair_id", authed, patchRepairHandler(svc))
	repairs.DELETE("/:repair_id", authed, deleteRepairHandler(svc))

	items := services.Group("/:service_id/items")
	items.GET("", listItemsHandler(svc))
	items.POST("", authed, createItemHandler(svc))
	items.GET("/:item_id", getItemHandler(svc))
	items.PUT("/:item_id", authed, replaceItemHandler(svc))
	items.PATCH("/:item_id", authed, patchItemHandler(svc))
	items.DELETE("/:item_id", authed, deleteItemHandler(svc))

	products := r.Group("/products")
	products.GET("", listProductsHandler(svc))
	products.POST("", authed, createProductHandler(svc))
	products.GET("/:product_id", getProductHandler(svc))
	products.PUT("/:product_id", authed, replaceProductHandler(svc))
	products.PATCH("/:product_id", authed, patchProductHandler(svc))
	products.DELETE("/:product_id", authed, deleteProductHandler(svc))

	variants := products.Group("/:product_id/variants")
	variants.GET("", listVariantsHandler(svc))
	variants.POST("", authed, createVariantHandler(svc))
	variants.GET("/:variant_id", getVariantHandler(svc))
	variants.PUT("/:variant_id", authed, replaceVariantHandler(svc))
	variants.PATCH("/:variant_id", authed, patchVariantHandler(svc))
	variants.DELETE("/:variant_id", authed, deleteVariantHandler(svc))

	return r
}

// ---- helpers ----

// ids parses the named path params in order; the first bad one aborts with 400.
func ids(c *gin.Context, names ...string) ([]int64, bool) {
	out := make([]int64, len(names))
	for i, n := range names {
		v, err := strconv.ParseInt(c.Param(n), 10, 64)
		if err != nil || v <= 0 {
			httpx.WriteError(c, apperr.Invalid("invalid "+n, err))
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func bind[T any](c *gin.Context) (T, bool) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.BadRequest(c, err)
		return in, false
	}
	return in, true
}

func principal(c *gin.Context) int64 {
	id, _ := httpx.Principal(c)
	return id
}

func respond[T any](c *gin.Context, status int, v T, err error) {
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(status, v)
}

func noContent(c *gin.Context, err error) {
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- health / auth ----

// healthHandler godoc
// @Summary Liveness and store reachability
// @Tags health
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func healthHandler(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := gw.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "dialect": string(gw.Dialect())})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dialect": string(gw.Dialect())})
	}
}

type tokenResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	CustomerID int64     `json:"customer_id"`
}

// loginHandler godoc
// @Summary Issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body shop.LoginRequest true "credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} httpx.HTTPError
// @Router /login [post]
func loginHandler(svc *shop.Service, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bind[shop.LoginRequest](c)
		if !ok {
			return
		}
		cust, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		token, exp, err := tokens.Issue(cust.ID, cust.Email)
		if err != nil {
			httpx.WriteError(c, apperr.StoreFailure(err))
			return
		}
		c.JSON(http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp, CustomerID: cust.ID})
	}
}

// ---- customers ----

// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {array} shop.CustomerView
// @Router /customers [get]
func listCustomersHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListCustomers(c.Request.Context())
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Register a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param payload body shop.CustomerInput true "customer"
// @Success 201 {object} shop.CustomerView
// @Failure 400 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Router /customers [post]
func createCustomerHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bind[shop.CustomerInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateCustomer(c.Request.Context(), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get a customer
// @Tags customers
// @Produce json
// @Param customer_id path int true "customer id"
// @Success 200 {object} shop.CustomerView
// @Failure 404 {object} httpx.HTTPError
// @Router /customers/{customer_id} [get]
func getCustomerHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		out, err := svc.GetCustomer(c.Request.Context(), id[0])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace a customer
// @Tags customers
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param payload body shop.CustomerInput true "customer"
// @Success 200 {object} shop.CustomerView
// @Router /customers/{customer_id} [put]
func replaceCustomerHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		in, ok := bind[shop.CustomerInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceCustomer(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch a customer
// @Tags customers
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param payload body shop.CustomerPatch true "fields to change"
// @Success 200 {object} shop.CustomerView
// @Router /customers/{customer_id} [patch]
func patchCustomerHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		in, ok := bind[shop.CustomerPatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchCustomer(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete a customer
// @Tags customers
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Success 204
// @Router /customers/{customer_id} [delete]
func deleteCustomerHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteCustomer(c.Request.Context(), id[0], principal(c)))
	}
}

// ---- service requests ----

// @Summary List a customer's services
// @Tags services
// @Param customer_id path int true "customer id"
// @Success 200 {array} shop.ServiceView
// @Router /customers/{customer_id}/services [get]
func listServicesHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		out, err := svc.ListServices(c.Request.Context(), id[0])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Open a service request
// @Tags services
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param payload body shop.ServiceInput true "service"
// @Success 201 {object} shop.ServiceView
// @Router /customers/{customer_id}/services [post]
func createServiceHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ServiceInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateService(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get a service request
// @Tags services
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Success 200 {object} shop.ServiceView
// @Router /customers/{customer_id}/services/{service_id} [get]
func getServiceHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		out, err := svc.GetService(c.Request.Context(), id[0], id[1])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace a service request
// @Tags services
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param payload body shop.ServiceInput true "service"
// @Success 200 {object} shop.ServiceView
// @Router /customers/{customer_id}/services/{service_id} [put]
func replaceServiceHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ServiceInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceService(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch a service request
// @Tags services
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param payload body shop.ServicePatch true "fields to change"
// @Success 200 {object} shop.ServiceView
// @Router /customers/{customer_id}/services/{service_id} [patch]
func patchServiceHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ServicePatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchService(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete a service request
// @Tags services
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Success 204
// @Router /customers/{customer_id}/services/{service_id} [delete]
func deleteServiceHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteService(c.Request.Context(), id[0], id[1], principal(c)))
	}
}

// ---- repairs ----

// @Summary List repairs of a repair service
// @Tags repairs
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Success 200 {array} shop.RepairView
// @Router /customers/{customer_id}/services/{service_id}/repairs [get]
func listRepairsHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		out, err := svc.ListRepairs(c.Request.Context(), id[0], id[1])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Create a repair
// @Tags repairs
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param payload body shop.RepairInput true "repair"
// @Success 201 {object} shop.RepairView
// @Router /customers/{customer_id}/services/{service_id}/repairs [post]
func createRepairHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		in, ok := bind[shop.RepairInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateRepair(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get a repair
// @Tags repairs
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param repair_id path int true "repair id"
// @Success 200 {object} shop.RepairView
// @Router /customers/{customer_id}/services/{service_id}/repairs/{repair_id} [get]
func getRepairHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "repair_id")
		if !ok {
			return
		}
		out, err := svc.GetRepair(c.Request.Context(), id[0], id[1], id[2])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace a repair
// @Tags repairs
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param repair_id path int true "repair id"
// @Param payload body shop.RepairInput true "repair"
// @Success 200 {object} shop.RepairView
// @Router /customers/{customer_id}/services/{service_id}/repairs/{repair_id} [put]
func replaceRepairHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "repair_id")
		if !ok {
			return
		}
		in, ok := bind[shop.RepairInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceRepair(c.Request.Context(), id[0], id[1], id[2], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch a repair
// @Tags repairs
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param repair_id path int true "repair id"
// @Param payload body shop.RepairPatch true "fields to change"
// @Success 200 {object} shop.RepairView
// @Router /customers/{customer_id}/services/{service_id}/repairs/{repair_id} [patch]
func patchRepairHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "repair_id")
		if !ok {
			return
		}
		in, ok := bind[shop.RepairPatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchRepair(c.Request.Context(), id[0], id[1], id[2], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete a repair
// @Tags repairs
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param repair_id path int true "repair id"
// @Success 204
// @Router /customers/{customer_id}/services/{service_id}/repairs/{repair_id} [delete]
func deleteRepairHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "repair_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteRepair(c.Request.Context(), id[0], id[1], id[2], principal(c)))
	}
}

// ---- item requests ----

// @Summary List item requests of a sale service
// @Tags items
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Success 200 {array} shop.ItemRequestView
// @Router /customers/{customer_id}/services/{service_id}/items [get]
func listItemsHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		out, err := svc.ListItems(c.Request.Context(), id[0], id[1])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Add an item request
// @Tags items
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param payload body shop.ItemInput true "item"
// @Success 201 {object} shop.ItemRequestView
// @Failure 409 {object} httpx.HTTPError
// @Router /customers/{customer_id}/services/{service_id}/items [post]
func createItemHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ItemInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateItem(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get an item request
// @Tags items
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param item_id path int true "item id"
// @Success 200 {object} shop.ItemRequestView
// @Router /customers/{customer_id}/services/{service_id}/items/{item_id} [get]
func getItemHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "item_id")
		if !ok {
			return
		}
		out, err := svc.GetItem(c.Request.Context(), id[0], id[1], id[2])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace an item request
// @Tags items
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param item_id path int true "item id"
// @Param payload body shop.ItemInput true "item"
// @Success 200 {object} shop.ItemRequestView
// @Router /customers/{customer_id}/services/{service_id}/items/{item_id} [put]
func replaceItemHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "item_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ItemInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceItem(c.Request.Context(), id[0], id[1], id[2], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch an item request
// @Tags items
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param item_id path int true "item id"
// @Param payload body shop.ItemPatch true "fields to change"
// @Success 200 {object} shop.ItemRequestView
// @Router /customers/{customer_id}/services/{service_id}/items/{item_id} [patch]
func patchItemHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "item_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ItemPatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchItem(c.Request.Context(), id[0], id[1], id[2], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete an item request
// @Tags items
// @Security BearerAuth
// @Param customer_id path int true "customer id"
// @Param service_id path int true "service id"
// @Param item_id path int true "item id"
// @Success 204
// @Router /customers/{customer_id}/services/{service_id}/items/{item_id} [delete]
func deleteItemHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "customer_id", "service_id", "item_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteItem(c.Request.Context(), id[0], id[1], id[2], principal(c)))
	}
}

// ---- products ----

// @Summary List products
// @Tags products
// @Success 200 {array} shop.ProductView
// @Router /products [get]
func listProductsHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListProducts(c.Request.Context())
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Create a product
// @Tags products
// @Security BearerAuth
// @Param payload body shop.ProductInput true "product"
// @Success 201 {object} shop.ProductView
// @Router /products [post]
func createProductHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bind[shop.ProductInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateProduct(c.Request.Context(), principal(c), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get a product
// @Tags products
// @Param product_id path int true "product id"
// @Success 200 {object} shop.ProductView
// @Router /products/{product_id} [get]
func getProductHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		out, err := svc.GetProduct(c.Request.Context(), id[0])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace a product
// @Tags products
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param payload body shop.ProductInput true "product"
// @Success 200 {object} shop.ProductView
// @Router /products/{product_id} [put]
func replaceProductHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ProductInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceProduct(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch a product
// @Tags products
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param payload body shop.ProductPatch true "fields to change"
// @Success 200 {object} shop.ProductView
// @Router /products/{product_id} [patch]
func patchProductHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		in, ok := bind[shop.ProductPatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchProduct(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete a product and its variants
// @Tags products
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Success 204
// @Router /products/{product_id} [delete]
func deleteProductHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteProduct(c.Request.Context(), id[0], principal(c)))
	}
}

// ---- product variants ----

// @Summary List variants of a product
// @Tags variants
// @Param product_id path int true "product id"
// @Success 200 {array} shop.VariantView
// @Router /products/{product_id}/variants [get]
func listVariantsHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		out, err := svc.ListVariants(c.Request.Context(), id[0])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Create a variant
// @Tags variants
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param payload body shop.VariantInput true "variant"
// @Success 201 {object} shop.VariantView
// @Router /products/{product_id}/variants [post]
func createVariantHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id")
		if !ok {
			return
		}
		in, ok := bind[shop.VariantInput](c)
		if !ok {
			return
		}
		out, err := svc.CreateVariant(c.Request.Context(), id[0], principal(c), in)
		respond(c, http.StatusCreated, out, err)
	}
}

// @Summary Get a variant
// @Tags variants
// @Param product_id path int true "product id"
// @Param variant_id path int true "variant id"
// @Success 200 {object} shop.VariantView
// @Router /products/{product_id}/variants/{variant_id} [get]
func getVariantHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id", "variant_id")
		if !ok {
			return
		}
		out, err := svc.GetVariant(c.Request.Context(), id[0], id[1])
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Replace a variant
// @Tags variants
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param variant_id path int true "variant id"
// @Param payload body shop.VariantInput true "variant"
// @Success 200 {object} shop.VariantView
// @Router /products/{product_id}/variants/{variant_id} [put]
func replaceVariantHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id", "variant_id")
		if !ok {
			return
		}
		in, ok := bind[shop.VariantInput](c)
		if !ok {
			return
		}
		out, err := svc.ReplaceVariant(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Patch a variant
// @Tags variants
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param variant_id path int true "variant id"
// @Param payload body shop.VariantPatch true "fields to change"
// @Success 200 {object} shop.VariantView
// @Router /products/{product_id}/variants/{variant_id} [patch]
func patchVariantHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id", "variant_id")
		if !ok {
			return
		}
		in, ok := bind[shop.VariantPatch](c)
		if !ok {
			return
		}
		out, err := svc.PatchVariant(c.Request.Context(), id[0], id[1], principal(c), in)
		respond(c, http.StatusOK, out, err)
	}
}

// @Summary Delete a variant
// @Tags variants
// @Security BearerAuth
// @Param product_id path int true "product id"
// @Param variant_id path int true "variant id"
// @Success 204
// @Router /products/{product_id}/variants/{variant_id} [delete]
func deleteVariantHandler(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ids(c, "product_id", "variant_id")
		if !ok {
			return
		}
		noContent(c, svc.DeleteVariant(c.Request.Context(), id[0], id[1], principal(c)))
	}
}
