package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.stripe.com/v1"

// Currency is fixed: the fund only accepts rand.
const Currency = "zar"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatePaymentIntent takes the amount in major units (rand), converts to
// cents, and returns the client secret the frontend finishes the charge with.
func (c *Client) CreatePaymentIntent(amount float64) (string, error) {
	endpoint := fmt.Sprintf("%s/payment_intents", c.baseURL)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	form.Set("currency", Currency)
	form.Set("metadata[type]", "investment")

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("stripe rejected payment intent (status %d): %s", resp.StatusCode, string(body))

		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("stripe: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("stripe rejected payment intent (status %d)", resp.StatusCode)
	}

	var response paymentIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("stripe decode failed: %w", err)
	}

	return response.ClientSecret, nil
}
