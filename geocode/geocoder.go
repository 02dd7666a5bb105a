package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Result holds the resolved administrative strings for a coordinate pair.
type Result struct {
	Locality *string
	Country  *string
}

// Resolver turns signed decimal coordinates into locality and country
// strings. Implementations must tolerate total failure (network, auth,
// parse) by reporting ok=false instead of an error; callers never crash on
// an unresolved lookup.
type Resolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) (Result, bool)
}

// GoogleResolver resolves coordinates through the Google Geocoding API.
type GoogleResolver struct {
	APIKey   string
	Language string
	BaseURL  string
	Client   *http.Client
}

func NewGoogleResolver(apiKey, language string) *GoogleResolver {
	return &GoogleResolver{
		APIKey:   apiKey,
		Language: language,
		BaseURL:  defaultBaseURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

// Resolve performs the remote lookup. Any failure is logged and reported
// as not-resolved.
func (g *GoogleResolver) Resolve(ctx context.Context, latitude, longitude float64) (Result, bool) {
	if g.APIKey == "" {
		return Result{}, false
	}

	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("language", g.Language)
	params.Set("latlng", fmt.Sprintf("%f,%f", latitude, longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("geocode: Failed to build request for %f,%f: %v", latitude, longitude, err)
		return Result{}, false
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("geocode: Lookup failed for %f,%f: %v", latitude, longitude, err)
		return Result{}, false
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Printf("geocode: Failed to decode response for %f,%f: %v", latitude, longitude, err)
		return Result{}, false
	}
	if decoded.Status != "OK" {
		log.Printf("geocode: Lookup for %f,%f returned status %s", latitude, longitude, decoded.Status)
		return Result{}, false
	}

	result := Result{
		Locality: pickLocality(decoded.Results),
		Country:  pickCountry(decoded.Results),
	}
	return result, result.Locality != nil || result.Country != nil
}

// localityTypes in specificity order: the first matching political
// component wins.
var localityTypes = []string{
	"locality",
	"administrative_area_level_3",
	"administrative_area_level_2",
	"administrative_area_level_1",
}

func pickLocality(results []geocodeResult) *string {
	// one pass per type so a locality anywhere in the response beats an
	// administrative area listed before it
	for _, t := range localityTypes {
		for _, result := range results {
			for _, c := range result.AddressComponents {
				if hasType(c, "political") && hasType(c, t) {
					name := c.LongName
					return &name
				}
			}
		}
	}
	return nil
}

func pickCountry(results []geocodeResult) *string {
	for _, result := range results {
		for _, c := range result.AddressComponents {
			if hasType(c, "country") && hasType(c, "political") {
				name := c.LongName
				return &name
			}
		}
	}
	return nil
}

func hasType(c addressComponent, wanted string) bool {
	for _, t := range c.Types {
		if t == wanted {
			return true
		}
	}
	return false
}
