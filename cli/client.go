package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// ApiClient handles API requests to the WhatsToEat API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("WHATSTOEAT_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("WHATSTOEAT_API_TOKEN"),
	}

	if !client.ping() {
		fmt.Printf("Warning: API server at %s is not available.\n", baseURL)
	}

	return client
}

// ping checks if the API server is available
func (c *ApiClient) ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Meal mirrors the API's meal representation
type Meal struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Calories int     `json:"calories"`
	Diet     string  `json:"diet"`
	Flavor   string  `json:"flavor"`
	Ratings  []int   `json:"ratings"`
}

// AverageRating returns the mean rating, or 0 with no ratings.
func (m Meal) AverageRating() float64 {
	if len(m.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range m.Ratings {
		sum += r
	}
	return float64(sum) / float64(len(m.Ratings))
}

// RatedMeal is one entry in the analytics top-rated listing
type RatedMeal struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvgRating float64 `json:"avg_rating"`
}

// Report mirrors the API's analytics report
type Report struct {
	TopRated     []RatedMeal    `json:"top_rated"`
	AvgPrice     float64        `json:"avg_price"`
	MinPrice     float64        `json:"min_price"`
	MaxPrice     float64        `json:"max_price"`
	FlavorCounts map[string]int `json:"flavor_counts"`
	TotalMeals   int            `json:"total_meals"`
}

func (c *ApiClient) do(method, path string, body interface{}, out interface{}) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetMeals retrieves the menu
func (c *ApiClient) GetMeals() ([]Meal, error) {
	var resp struct {
		Meals []Meal `json:"meals"`
	}
	if err := c.do("GET", "/api/v1/meals", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meals, nil
}

// RateMeal submits a rating for a meal
func (c *ApiClient) RateMeal(id string, rating int) error {
	return c.do("POST", "/api/v1/meals/"+url.PathEscape(id)+"/ratings", map[string]int{"rating": rating}, nil)
}

// AddToHistory records a meal selection in the preference history
func (c *ApiClient) AddToHistory(id string) error {
	return c.do("POST", "/api/v1/preferences/history", map[string]string{"meal_id": id}, nil)
}

// GetRecommendations fetches recommendations under a strategy
func (c *ApiClient) GetRecommendations(topK int, strategy string) ([]Meal, error) {
	var resp struct {
		Meals []Meal `json:"meals"`
	}
	body := map[string]interface{}{"top_k": topK, "strategy": strategy}
	if err := c.do("POST", "/api/v1/recommendations", body, &resp); err != nil {
		return nil, err
	}
	return resp.Meals, nil
}

// SuggestByFlavor asks for a single meal matching a flavor
func (c *ApiClient) SuggestByFlavor(flavor string, budget *float64) (*Meal, error) {
	path := "/api/v1/suggest?flavor=" + url.QueryEscape(flavor)
	if budget != nil {
		path += "&budget=" + strconv.FormatFloat(*budget, 'f', 2, 64)
	}
	var meal Meal
	if err := c.do("GET", path, nil, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// GetAnalytics fetches the analytics report
func (c *ApiClient) GetAnalytics(topN int) (*Report, error) {
	var report Report
	if err := c.do("GET", "/api/v1/analytics?top_n="+strconv.Itoa(topN), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SaveState asks the server to snapshot its state
func (c *ApiClient) SaveState() error {
	return c.do("POST", "/api/v1/state/save", nil, nil)
}
