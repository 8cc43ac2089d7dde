package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	domcart "example.com/storefront/internal/domain/cart"
	domcategory "example.com/storefront/internal/domain/category"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/internal/infra/api"
	authuc "example.com/storefront/internal/usecase/auth"
	cartuc "example.com/storefront/internal/usecase/cart"
	categoryuc "example.com/storefront/internal/usecase/category"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
	orderuc "example.com/storefront/internal/usecase/order"
	productuc "example.com/storefront/internal/usecase/product"
	"example.com/storefront/pkg/logger"
)

type API struct {
	authSvc     *authuc.Service
	cartSvc     *cartuc.Service
	productSvc  *productuc.Service
	categorySvc *categoryuc.Service
	checkoutSvc *checkoutuc.Service
	orderSvc    *orderuc.Service
	metrics     http.Handler
	corsOrigins []string
	log         *logger.Logger
	validator   *validator.Validate
}

type Dependencies struct {
	AuthService     *authuc.Service
	CartService     *cartuc.Service
	ProductService  *productuc.Service
	CategoryService *categoryuc.Service
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	CORSOrigins    []string
	Logger         *logger.Logger
}

func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &API{
		authSvc:     deps.AuthService,
		cartSvc:     deps.CartService,
		productSvc:  deps.ProductService,
		categorySvc: deps.CategoryService,
		checkoutSvc: deps.CheckoutService,
		orderSvc:    deps.OrderService,
		metrics:     deps.MetricsHandler,
		corsOrigins: deps.CORSOrigins,
		log:         log,
		validator:   validator.New(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.accessLog)
	r.Use(chimw.Recoverer)
	if len(a.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(sr chi.Router) {
			sr.Get("/", a.handleGetSession)
			sr.Post("/login", a.handleLogin)
			sr.Post("/register", a.handleRegister)
			sr.Post("/logout", a.handleLogout)
			sr.Post("/forgot-password", a.handleForgotPassword)
			sr.With(a.requireSession).Patch("/profile", a.handleUpdateProfile)
		})

		r.Route("/cart", func(cr chi.Router) {
			cr.Get("/", a.handleGetCart)
			cr.Delete("/", a.handleClearCart)
			cr.Post("/items", a.handleAddCartItem)
			cr.Put("/items/{productID}", a.handleSetCartQuantity)
			cr.Delete("/items/{productID}", a.handleRemoveCartItem)
		})

		r.Get("/products", a.handleListProducts)
		r.Get("/products/{slug}", a.handleGetProduct)
		r.Get("/categories", a.handleListCategories)
		r.Get("/checkout/summary", a.handleCheckoutSummary)

		r.Group(func(pr chi.Router) {
			pr.Use(a.requireSession)
			pr.Post("/checkout/cod", a.handlePlaceCOD)
			pr.Post("/checkout/payment", a.handleStartPayment)
			pr.Post("/checkout/payment/verify", a.handleCompletePayment)
			pr.Get("/orders", a.handleListOrders)
			pr.Get("/orders/{id}", a.handleGetOrder)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(a.requireAdmin)

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/products", func(rr chi.Router) {
					rr.Post("/", a.handleCreateProduct)
					rr.Put("/{id}", a.handleUpdateProduct)
					rr.Delete("/{id}", a.handleDeleteProduct)
				})

				admin.Route("/categories", func(rr chi.Router) {
					rr.Post("/", a.handleCreateCategory)
					rr.Put("/{id}", a.handleUpdateCategory)
					rr.Delete("/{id}", a.handleDeleteCategory)
				})
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	if err := decode(r, dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

// decode reads the body without validating it, for payloads the service
// validates itself.
func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"full_name":  u.FullName,
		"avatar_url": u.AvatarURL,
		"phone":      u.Phone,
		"address":    u.Address,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt,
	}
}

func mapCategory(c *domcategory.Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
	}
}

func mapProduct(p *domproduct.Product) map[string]any {
	out := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"category_id": p.CategoryID,
		"stock":       p.Stock,
		"featured":    p.Featured,
	}
	if p.Category != nil {
		out["category"] = mapCategory(p.Category)
	}
	return out
}

func mapCart(c domcart.Cart) map[string]any {
	lines := c.Lines()
	items := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]any{
			"product":  mapProduct(&l.Product),
			"quantity": l.Quantity,
			"subtotal": l.Subtotal(),
		})
	}
	return map[string]any{
		"items":       items,
		"total_items": c.TotalItems(),
		"total_price": c.TotalPrice(),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"price":      item.Price,
			"quantity":   item.Quantity,
		})
	}

	return map[string]any{
		"id":               o.ID,
		"user_id":          o.UserID,
		"status":           o.Status,
		"payment_status":   o.PaymentStatus,
		"payment_method":   o.PaymentMethod,
		"total_amount":     o.TotalAmount,
		"shipping_address": o.ShippingAddress,
		"created_at":       o.CreatedAt,
		"items":            items,
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	var remote *api.Error
	switch {
	case errors.As(err, &remote):
		status := remote.Status
		switch {
		case status < 400:
			status = http.StatusUnprocessableEntity
		case status >= 500:
			status = http.StatusBadGateway
		}
		respondError(w, status, remote)
	case errors.Is(err, api.ErrTransport),
		errors.Is(err, api.ErrDecode),
		errors.Is(err, domuser.ErrInvalidResponse):
		respondError(w, http.StatusBadGateway, err)
	case errors.Is(err, domuser.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domuser.ErrAdminRequired):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domcategory.ErrCategoryNotFound),
		errors.Is(err, domorder.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrPaymentNotVerified):
		respondError(w, http.StatusPaymentRequired, err)
	case errors.Is(err, domuser.ErrValidation),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrInvalidInput),
		errors.Is(err, domcategory.ErrCategoryInvalidName),
		errors.Is(err, domcategory.ErrEmptyPatch),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrCheckoutValidation):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
