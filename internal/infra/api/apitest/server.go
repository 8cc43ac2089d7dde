// Package apitest runs an in-process storefront API for tests. It speaks the
// same wire format as the real backend: Mongo-style ids, {success, message}
// envelopes, multipart admin forms and bearer tokens.
package apitest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"example.com/storefront/internal/infra/security"
)

const (
	jwtSecret     = "apitest-secret"
	gatewaySecret = "apitest-gateway-secret"
	maxFormMemory = 4 << 20
)

type user struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         int       `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	passwordHash string
	answer       string
}

type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"-"`
	Quantity    int         `json:"quantity"`
	Shipping    bool        `json:"shipping"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	photo       []byte
}

// Order is an order as the fake API received it.
type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"-"`
	TotalAmount     json.Number     `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentStatus   string          `json:"payment_status"`
	Items           json.RawMessage `json:"items"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Server struct {
	*httptest.Server

	tokens   *security.JWTService
	hasher   *security.PasswordHasher
	requests atomic.Int64

	mu         sync.Mutex
	users      []*user
	categories []*Category
	products   []*Product
	orders     []Order
	gateway    map[string]int64
}

// New starts a fake API that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tokens:  security.NewJWTService(jwtSecret, time.Hour),
		hasher:  security.NewPasswordHasher(4),
		gateway: make(map[string]int64),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Requests is the number of requests served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// AddUser registers an account and returns its id. Role 1 is admin.
func (s *Server) AddUser(name, email, password string, role int) string {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		panic(err)
	}
	u := &user{
		ID:           newID(),
		Name:         name,
		Email:        strings.ToLower(email),
		Phone:        "5550000000",
		Address:      "1 Test Street",
		Role:         role,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		passwordHash: hash,
		answer:       "blue",
	}
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	return u.ID
}

// Token mints a bearer token for userID as the API would.
func (s *Server) Token(userID string, role int) string {
	tok, err := s.tokens.GenerateToken(userID, role)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) AddCategory(name string) *Category {
	now := time.Now().UTC().Truncate(time.Second)
	c := &Category{ID: newID(), Name: name, Slug: slugify(name), CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	s.categories = append(s.categories, c)
	s.mu.Unlock()
	cp := *c
	return &cp
}

func (s *Server) AddProduct(name, price, categoryID string, quantity int, shipping bool) *Product {
	now := time.Now().UTC().Truncate(time.Second)
	p := &Product{
		ID:          newID(),
		Name:        name,
		Slug:        slugify(name),
		Description: name + " description",
		Price:       json.Number(price),
		Category:    categoryID,
		Quantity:    quantity,
		Shipping:    shipping,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	cp := *p
	return &cp
}

func (s *Server) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Order(nil), s.orders...)
}

// Sign is the signature the gateway would hand back for a payment.
func Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(gatewaySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s.requests.Add(1)
			next.ServeHTTP(w, req)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Post("/forgot-password", s.forgotPassword)
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/get-product", s.listProducts)
			r.Get("/get-product/{slug}", s.getProduct)
			r.Get("/product-photo/{id}", s.productPhoto)
			r.With(s.requireAdmin).Post("/create-product", s.createProduct)
			r.With(s.requireAdmin).Put("/update-product/{id}", s.updateProduct)
			r.With(s.requireAdmin).Delete("/delete-product/{id}", s.deleteProduct)
		})

		r.Route("/category", func(r chi.Router) {
			r.Get("/get-category", s.listCategories)
			r.With(s.requireAdmin).Post("/create-category", s.createCategory)
			r.With(s.requireAdmin).Put("/update-category/{id}", s.updateCategory)
			r.With(s.requireAdmin).Delete("/delete-category/{id}", s.deleteCategory)
		})

		r.Route("/order", func(r chi.Router) {
			r.With(s.requireSignedIn).Post("/create-order", s.createOrder)
			r.Post("/razorpay/orders", s.createGatewayOrder)
			r.Post("/razorpay/verify", s.verifyPayment)
		})
	})
	return r
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid request"})
		return
	}

	s.mu.Lock()
	u := s.userByEmail(req.Email)
	s.mu.Unlock()
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Email is not registered"})
		return
	}
	if err := s.hasher.Verify(u.passwordHash, req.Password); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid password"})
		return
	}
	s.writeSession(w, http.StatusOK, u, "Login successfully")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email and password are required"})
		return
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error in registration"})
		return
	}

	s.mu.Lock()
	if s.userByEmail(req.Email) != nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Already registered, please login"})
		return
	}
	u := &user{
		ID:           newID(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		passwordHash: hash,
		answer:       req.Answer,
	}
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.writeSession(w, http.StatusCreated, u, "User registered successfully")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone       string `json:"phone"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Phone and new password are required"})
		return
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Something went wrong"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == req.Phone {
			u.passwordHash = hash
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password reset successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Wrong phone number"})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, s.populated(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "products": out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "product": s.populated(p)})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Product not found"})
}

func (s *Server) productPhoto(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.productByID(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if p == nil || len(p.photo) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(p.photo))
	_, _ = w.Write(p.photo)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	p := &Product{ID: newID(), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if msg := applyProductForm(r, p); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": msg})
		return
	}
	p.UpdatedAt = p.CreatedAt

	s.mu.Lock()
	s.products = append(s.products, p)
	resp := productWire(p)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Product created successfully", "product": resp})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	existing := s.productByID(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Product not found"})
		return
	}

	next := *existing
	if msg := applyProductForm(r, &next); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": msg})
		return
	}
	next.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	s.mu.Lock()
	*existing = next
	resp := productWire(existing)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product updated successfully", "product": resp})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Product not found"})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All categories list", "category": out})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid form"})
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Name is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Category already exists"})
			return
		}
	}
	now := time.Now().UTC().Truncate(time.Second)
	c := &Category{ID: newID(), Name: name, Slug: slugify(name), Description: r.FormValue("description"), CreatedAt: now, UpdatedAt: now}
	s.categories = append(s.categories, c)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "New category created", "category": *c})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid form"})
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID != id {
			continue
		}
		if name := strings.TrimSpace(r.FormValue("name")); name != "" {
			c.Name = name
			c.Slug = slugify(name)
		}
		if desc := r.FormValue("description"); desc != "" {
			c.Description = desc
		}
		c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Category updated successfully", "category": *c})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Category not found"})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.categories {
		if c.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Category deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Category not found"})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalAmount     json.Number     `json:"total_amount"`
		ShippingAddress string          `json:"shipping_address"`
		Items           json.RawMessage `json:"items"`
		PaymentStatus   string          `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShippingAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid order"})
		return
	}

	o := Order{
		ID:              newID(),
		UserID:          claimsFrom(r).UserID,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentStatus:   req.PaymentStatus,
		Items:           req.Items,
		Status:          "pending",
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Order placed", "order": o})
}

func (s *Server) createGatewayOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid amount"})
		return
	}
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	s.mu.Lock()
	s.gateway[id] = req.Amount
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "amount": req.Amount, "currency": "INR"})
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}
	s.mu.Lock()
	_, known := s.gateway[req.OrderID]
	s.mu.Unlock()

	ok := known && hmac.Equal([]byte(Sign(req.OrderID, req.PaymentID)), []byte(req.Signature))
	writeJSON(w, http.StatusOK, map[string]any{"success": ok})
}

type claimsKey struct{}

func claimsFrom(r *http.Request) *security.Claims {
	c, _ := r.Context().Value(claimsKey{}).(*security.Claims)
	if c == nil {
		return &security.Claims{}
	}
	return c
}

func contextWithClaims(r *http.Request, c *security.Claims) context.Context {
	return context.WithValue(r.Context(), claimsKey{}, c)
}

func (s *Server) requireSignedIn(next http.Handler) http.Handler {
	return s.authenticate(next, false)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.authenticate(next, true)
}

func (s *Server) authenticate(next http.Handler, admin bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized access"})
			return
		}
		claims, err := s.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid token"})
			return
		}
		if admin && claims.Role != 1 {
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Admin access required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithClaims(r, claims)))
	})
}

func (s *Server) writeSession(w http.ResponseWriter, status int, u *user, msg string) {
	token, err := s.tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error signing token"})
		return
	}
	writeJSON(w, status, map[string]any{"success": true, "message": msg, "user": u, "token": token})
}

// populated renders a product with its category object inlined, as the
// listing endpoints do. Caller holds s.mu.
func (s *Server) populated(p *Product) map[string]any {
	out := productWire(p)
	for _, c := range s.categories {
		if c.ID == p.Category {
			out["category"] = *c
		}
	}
	return out
}

// productWire renders a product with a bare category id, as the write
// endpoints do.
func productWire(p *Product) map[string]any {
	raw, _ := json.Marshal(p)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	out["category"] = p.Category
	return out
}

func applyProductForm(r *http.Request, p *Product) string {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return "Invalid form"
	}
	if v := strings.TrimSpace(r.FormValue("name")); v != "" {
		p.Name = v
		p.Slug = slugify(v)
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := r.FormValue("price"); v != "" {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "Price must be a number"
		}
		p.Price = json.Number(v)
	}
	if v := r.FormValue("stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "Quantity must be a number"
		}
		p.Quantity = n
	}
	if v := r.FormValue("category"); v != "" {
		p.Category = v
	}
	if v := r.FormValue("featured"); v != "" {
		p.Shipping = v == "true"
	}
	if p.Name == "" || p.Price == "" || p.Category == "" {
		return "Name, price and category are required"
	}
	if f, _, err := r.FormFile("photo"); err == nil {
		defer f.Close()
		photo, err := io.ReadAll(f)
		if err != nil {
			return "Invalid photo"
		}
		p.photo = photo
	}
	return ""
}

// Caller holds s.mu.
func (s *Server) userByEmail(email string) *user {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// Caller holds s.mu.
func (s *Server) productByID(id string) *Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
