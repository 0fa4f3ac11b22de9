package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rannerhq/ranner/config"
	"github.com/rannerhq/ranner/internal/domain"
	"github.com/rs/zerolog"
)

// Client talks to the Amadeus self-service APIs. It is handed to the
// offers service at construction; nothing in this package keeps
// process-wide state.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	log          zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(httpClient *http.Client, cfg config.AmadeusConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		log:          log,
	}
}

// SearchResult carries both views of one search response: Offers is the
// decoded data array (selection workflows take element 0), Raw the full
// body as the provider sent it (the prediction call wants it whole).
type SearchResult struct {
	Offers []json.RawMessage
	Raw    json.RawMessage
}

type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Currency      string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	v.Set("originLocationCode", p.Origin)
	v.Set("destinationLocationCode", p.Destination)
	v.Set("departureDate", p.DepartureDate)
	if p.ReturnDate != "" {
		v.Set("returnDate", p.ReturnDate)
	}
	v.Set("adults", fmt.Sprint(p.Adults))
	if p.Currency != "" {
		v.Set("currencyCode", p.Currency)
	}
	return v
}

func (c *Client) SearchOffers(ctx context.Context, params SearchParams) (*SearchResult, error) {
	body, err := c.get(ctx, "/v2/shopping/flight-offers", params.values())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &domain.ProviderError{Message: fmt.Sprintf("malformed search response: %v", err)}
	}
	return &SearchResult{Offers: envelope.Data, Raw: body}, nil
}

func (c *Client) SearchOffersRaw(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v2/shopping/flight-offers", nil, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) SearchDestinations(ctx context.Context, origin string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("origin", origin)
	body, err := c.get(ctx, "/v1/shopping/flight-destinations", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) SearchOfferDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("origin", origin)
	v.Set("destination", destination)
	body, err := c.get(ctx, "/v1/shopping/flight-dates", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

// PriceOffers submits a flight-offers-pricing payload. include is
// forwarded verbatim when non-empty ("bags" on the raw POST route).
func (c *Client) PriceOffers(ctx context.Context, payload json.RawMessage, include string) (json.RawMessage, error) {
	var v url.Values
	if include != "" {
		v = url.Values{}
		v.Set("include", include)
	}
	body, err := c.post(ctx, "/v1/shopping/flight-offers/pricing", v, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) SeatMapsForOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v1/shopping/seatmaps", nil, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) SeatMapsForOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("flight-orderId", orderID)
	body, err := c.get(ctx, "/v1/shopping/seatmaps", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) PredictOffers(ctx context.Context, searchResponse json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v2/shopping/flight-offers/prediction", nil, searchResponse)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) UpsellOffers(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v1/shopping/flight-offers/upselling", nil, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) SearchAvailabilities(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v1/shopping/availability/flight-availabilities", nil, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.post(ctx, "/v1/booking/flight-orders", nil, payload)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/v1/booking/flight-orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/booking/flight-orders/"+url.PathEscape(orderID), nil, nil)
	return err
}

func (c *Client) LookupLocations(ctx context.Context, keyword, subType string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("keyword", keyword)
	v.Set("subType", subType)
	body, err := c.get(ctx, "/v1/reference-data/locations", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) LookupCheckinLinks(ctx context.Context, airlineCode string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("airlineCode", airlineCode)
	body, err := c.get(ctx, "/v2/reference-data/urls/checkin-links", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) GetFlightStatus(ctx context.Context, carrierCode, flightNumber, departureDate string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("carrierCode", carrierCode)
	v.Set("flightNumber", flightNumber)
	v.Set("scheduledDepartureDate", departureDate)
	body, err := c.get(ctx, "/v2/schedule/flights", v)
	if err != nil {
		return nil, err
	}
	return dataOf(body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, query, payload)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload json.RawMessage) (json.RawMessage, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &domain.ProviderError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, providerCallError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("amadeus call failed")
		return nil, &domain.ProviderError{Status: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}
	return body, nil
}

// token returns a cached OAuth access token, fetching a fresh one when
// the cached token is within 30 seconds of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.ProviderError{Message: fmt.Sprintf("build token request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", providerCallError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.ProviderError{Status: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &domain.ProviderError{Message: fmt.Sprintf("decode token response: %v", err)}
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func providerCallError(ctx context.Context, err error) *domain.ProviderError {
	perr := &domain.ProviderError{Message: err.Error()}
	if ctx.Err() == context.DeadlineExceeded {
		perr.TimedOut = true
	}
	return perr
}

// dataOf unwraps the provider's {data: ...} envelope. If the body has no
// data field the whole body is returned so callers never lose a payload.
func dataOf(body json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return body
	}
	return envelope.Data
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 {
			if payload.Errors[0].Detail != "" {
				return payload.Errors[0].Detail
			}
			if payload.Errors[0].Title != "" {
				return payload.Errors[0].Title
			}
		}
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
	}
	return fmt.Sprintf("provider returned status %d", status)
}
