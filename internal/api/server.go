package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"whatstoeat/internal/analytics"
	"whatstoeat/internal/catalog"
	"whatstoeat/internal/database"
	"whatstoeat/internal/models"
	"whatstoeat/internal/persistence"
	"whatstoeat/internal/preferences"
	"whatstoeat/internal/recommend"
)

// Server is the HTTP front end over the catalog, preference model, and
// recommendation engine.
type Server struct {
	router  *gin.Engine
	catalog *catalog.Catalog
	prefs   *preferences.Preferences
	engine  *recommend.Engine
	metrics *analytics.MetricsCollector
	store   *database.Store
	dataDir string
	topK    int
}

// Options configures a Server.
type Options struct {
	Catalog     *catalog.Catalog
	Preferences *preferences.Preferences
	Engine      *recommend.Engine
	Metrics     *analytics.MetricsCollector
	// Store is the SQLite store used by the state endpoints; nil disables them.
	Store *database.Store
	// DataDir is where JSON snapshots are written.
	DataDir string
	// AuthSecret enables bearer-token auth when non-empty.
	AuthSecret string
	// DefaultTopK is used when a recommendation request omits top_k.
	DefaultTopK int
}

// NewServer creates a server and wires up its routes.
func NewServer(opts Options) *Server {
	if opts.DefaultTopK < 1 {
		opts.DefaultTopK = 3
	}
	s := &Server{
		router:  gin.Default(),
		catalog: opts.Catalog,
		prefs:   opts.Preferences,
		engine:  opts.Engine,
		metrics: opts.Metrics,
		store:   opts.Store,
		dataDir: opts.DataDir,
		topK:    opts.DefaultTopK,
	}
	s.setupRoutes(opts.AuthSecret)
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes(authSecret string) {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "WhatsToEat API is running"})
	})
	s.router.GET("/ws", s.handleWebSocket)

	v1 := s.router.Group("/api/v1")
	if authSecret != "" {
		v1.Use(AuthMiddleware(authSecret))
	}
	{
		// Menu management
		v1.GET("/meals", s.ListMeals)
		v1.POST("/meals", s.CreateMeal)
		v1.GET("/meals/:id", s.GetMeal)
		v1.DELETE("/meals/:id", s.DeleteMeal)
		v1.PUT("/meals/:id/price", s.UpdatePrice)
		v1.POST("/meals/:id/ratings", s.RateMeal)
		v1.POST("/meals/import", s.ImportCSV)

		// Preferences
		v1.GET("/preferences", s.GetPreferences)
		v1.POST("/preferences/history", s.AddHistory)
		v1.DELETE("/preferences/history", s.ResetHistory)
		v1.PUT("/preferences/budget", s.SetBudget)
		v1.DELETE("/preferences/budget", s.ClearBudget)

		// Recommendations
		v1.POST("/recommendations", s.Recommend)
		v1.GET("/suggest", s.SuggestByFlavor)

		// Analytics
		v1.GET("/analytics", s.Analytics)

		// State snapshots
		v1.POST("/state/save", s.SaveState)
		v1.POST("/state/load", s.LoadState)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, persistence.ErrNotFound),
		errors.Is(err, recommend.ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, recommend.ErrInvalidStrategy),
		errors.Is(err, persistence.ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// Menu handlers

type createMealRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
	Calories int     `json:"calories"`
	Diet     string  `json:"diet"`
	Flavor   string  `json:"flavor"`
}

func (s *Server) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := models.NewMeal(req.ID, req.Name, req.Price, req.Calories, req.Diet, req.Flavor)
	if err != nil {
		abortWith(c, err)
		return
	}
	if err := s.catalog.Add(meal); err != nil {
		abortWith(c, err)
		return
	}
	s.metrics.ObserveCatalog(s.catalog)
	c.JSON(http.StatusCreated, meal)
}

// ListMeals returns the menu, optionally filtered by diet (substring,
// case-insensitive) and max_price.
func (s *Server) ListMeals(c *gin.Context) {
	meals := s.catalog.Meals()
	if diet := c.Query("diet"); diet != "" {
		meals = s.catalog.FilterByDiet(diet)
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_price must be a number"})
			return
		}
		filtered := meals[:0]
		for _, m := range meals {
			if m.Price <= maxPrice {
				filtered = append(filtered, m)
			}
		}
		meals = filtered
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals, "total": len(meals)})
}

func (s *Server) GetMeal(c *gin.Context) {
	meal, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *Server) DeleteMeal(c *gin.Context) {
	removed, err := s.catalog.Remove(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	s.metrics.ObserveCatalog(s.catalog)
	c.JSON(http.StatusOK, removed)
}

func (s *Server) UpdatePrice(c *gin.Context) {
	var req struct {
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.SetPrice(c.Param("id"), req.Price); err != nil {
		abortWith(c, err)
		return
	}
	s.metrics.ObserveCatalog(s.catalog)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) RateMeal(c *gin.Context) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.AddRating(c.Param("id"), req.Rating); err != nil {
		abortWith(c, err)
		return
	}
	s.metrics.RecordRating()
	c.JSON(http.StatusOK, gin.H{"status": "rated"})
}

// ImportCSV parses a CSV request body into meals. Rows that fail to parse
// are reported alongside the imported count; the rest of the batch still
// lands.
func (s *Server) ImportCSV(c *gin.Context) {
	meals, rowErrs, err := persistence.ImportCSV(c.Request.Body)
	if err != nil {
		abortWith(c, err)
		return
	}
	imported := 0
	for _, m := range meals {
		if addErr := s.catalog.Add(m); addErr != nil {
			rowErrs = append(rowErrs, persistence.RowError{Row: -1, Err: addErr})
			continue
		}
		imported++
	}
	s.metrics.RecordImport(imported, len(rowErrs))
	s.metrics.ObserveCatalog(s.catalog)

	errMessages := make([]string, len(rowErrs))
	for i, re := range rowErrs {
		errMessages[i] = re.Error()
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "errors": errMessages})
}

// Preference handlers

func (s *Server) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"history":       s.prefs.History(),
		"token_weights": s.prefs.Weights(),
		"budget":        s.prefs.Budget(),
	})
}

func (s *Server) AddHistory(c *gin.Context) {
	var req struct {
		MealID string `json:"meal_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.prefs.AddToHistory(req.MealID); err != nil {
		abortWith(c, err)
		return
	}
	s.prefs.Recompute(s.catalog)
	c.JSON(http.StatusOK, gin.H{"token_weights": s.prefs.Weights()})
}

func (s *Server) ResetHistory(c *gin.Context) {
	s.prefs.ResetHistory()
	s.prefs.Recompute(s.catalog)
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) SetBudget(c *gin.Context) {
	var req struct {
		Budget float64 `json:"budget"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.prefs.SetBudget(req.Budget); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) ClearBudget(c *gin.Context) {
	s.prefs.ClearBudget()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Recommendation handlers

type recommendRequest struct {
	TopK     int     `json:"top_k"`
	Strategy string  `json:"strategy"`
	Budget   *float64 `json:"budget"`
}

func (s *Server) Recommend(c *gin.Context) {
	req := recommendRequest{TopK: s.topK, Strategy: string(recommend.StrategyBest)}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	budget := req.Budget
	if budget == nil {
		budget = s.prefs.Budget()
	}
	meals, err := s.engine.Recommend(s.catalog, s.prefs.Weights(), budget, req.TopK, recommend.Strategy(req.Strategy))
	if err != nil {
		abortWith(c, err)
		return
	}
	s.metrics.RecordRecommendation(req.Strategy)
	c.JSON(http.StatusOK, gin.H{"meals": meals, "strategy": req.Strategy})
}

func (s *Server) SuggestByFlavor(c *gin.Context) {
	flavor := c.Query("flavor")
	if flavor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flavor query parameter is required"})
		return
	}
	budget := s.prefs.Budget()
	if raw := c.Query("budget"); raw != "" {
		b, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be a number"})
			return
		}
		budget = &b
	}
	meal, err := s.engine.SuggestByFlavor(s.catalog, flavor, budget)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// Analytics handler

func (s *Server) Analytics(c *gin.Context) {
	topN := 3
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_n must be an integer"})
			return
		}
		topN = n
	}
	report, err := analytics.Generate(s.catalog, topN)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// State handlers

func (s *Server) SaveState(c *gin.Context) {
	menuPath := filepath.Join(s.dataDir, "menu.json")
	prefsPath := filepath.Join(s.dataDir, "preferences.json")
	if err := persistence.SaveCatalog(menuPath, s.catalog); err != nil {
		abortWith(c, err)
		return
	}
	if err := persistence.SavePreferences(prefsPath, s.prefs); err != nil {
		abortWith(c, err)
		return
	}
	if s.store != nil {
		if err := s.store.SaveCatalog(s.catalog); err != nil {
			abortWith(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"menu": menuPath, "preferences": prefsPath})
}

func (s *Server) LoadState(c *gin.Context) {
	loadedCatalog, err := persistence.LoadCatalog(filepath.Join(s.dataDir, "menu.json"))
	if err != nil {
		abortWith(c, err)
		return
	}
	loadedPrefs, err := persistence.LoadPreferences(filepath.Join(s.dataDir, "preferences.json"))
	if err != nil {
		abortWith(c, err)
		return
	}

	// Replace in place so existing handlers keep a valid catalog.
	for _, m := range s.catalog.Meals() {
		if _, err := s.catalog.Remove(m.ID); err != nil {
			abortWith(c, err)
			return
		}
	}
	if err := s.catalog.AddMany(loadedCatalog.Meals()); err != nil {
		abortWith(c, err)
		return
	}
	s.prefs.ResetHistory()
	s.prefs.ResetWeights()
	for _, id := range loadedPrefs.History() {
		if err := s.prefs.AddToHistory(id); err != nil {
			abortWith(c, err)
			return
		}
	}
	s.prefs.SetWeights(loadedPrefs.Weights())
	if b := loadedPrefs.Budget(); b != nil {
		if err := s.prefs.SetBudget(*b); err != nil {
			abortWith(c, err)
			return
		}
	} else {
		s.prefs.ClearBudget()
	}

	s.metrics.ObserveCatalog(s.catalog)
	c.JSON(http.StatusOK, gin.H{"meals": s.catalog.Len(), "history": len(s.prefs.History())})
}
