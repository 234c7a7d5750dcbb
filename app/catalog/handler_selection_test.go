package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/go-storefront/models"
	"github.com/mytheresa/go-storefront/variants"
)

func postSelection(t *testing.T, settings variants.Settings, code, body string) *httptest.ResponseRecorder {
	t.Helper()
	repo := &MockProductRepo{SourceProducts: []models.Product{newHeadphone()}}
	router := newTestRouter(repo, settings)
	req := httptest.NewRequest(http.MethodPost, "/catalog/"+code+"/selection", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResolved(t *testing.T, rec *httptest.ResponseRecorder) ResolvedResponse {
	t.Helper()
	var resp ResolvedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func availableValues(resp ResolvedResponse, option string) []string {
	var out []string
	for _, o := range resp.Options {
		if o.Name != option {
			continue
		}
		for _, v := range o.Values {
			if v.Available {
				out = append(out, v.Value)
			}
		}
	}
	return out
}

func TestHandleSelection(t *testing.T) {
	testCases := []struct {
		name               string
		settings           variants.Settings
		code               string
		body               string
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Picking White hides size S",
			code:               "HEADPHONE",
			body:               `{"selection":{},"change":{"option":"Color","value":"White"}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				assert.Equal(t, map[string]string{"Color": "White"}, resp.Selection)
				assert.Equal(t, []string{"M"}, availableValues(resp, "Size"))
				assert.Nil(t, resp.MatchedVariant)
				assert.Equal(t, 99.0, resp.Price)
				assert.False(t, resp.CanAddToCart)
			},
		},
		{
			name:               "Conflicting pick is cleared",
			code:               "HEADPHONE",
			body:               `{"selection":{"Color":"White"},"change":{"option":"Size","value":"S"}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				assert.Equal(t, map[string]string{"Size": "S"}, resp.Selection)
			},
		},
		{
			name:               "Full selection resolves the variant",
			code:               "HEADPHONE",
			body:               `{"selection":{"Size":"S"},"change":{"option":"Color","value":"Black"}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				require.NotNil(t, resp.MatchedVariant)
				assert.Equal(t, "HP-BLK-S", resp.MatchedVariant.SKU)
				assert.Equal(t, 100.0, resp.Price)
				require.NotNil(t, resp.CompareAtPrice)
				assert.Equal(t, 120.0, *resp.CompareAtPrice)
				require.NotNil(t, resp.DiscountPercentage)
				assert.Equal(t, 17, *resp.DiscountPercentage)
				assert.True(t, resp.CanAddToCart)
				assert.Equal(t, "black.jpg", resp.Image, "variant image overrides the product image")
			},
		},
		{
			name:               "Rounding down is configurable",
			settings:           variants.Settings{Rounding: variants.RoundDown},
			code:               "HEADPHONE",
			body:               `{"selection":{"Color":"Black","Size":"S"}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				require.NotNil(t, resp.DiscountPercentage)
				assert.Equal(t, 16, *resp.DiscountPercentage)
			},
		},
		{
			name:               "Sold out variant cannot be added",
			code:               "HEADPHONE",
			body:               `{"selection":{"Color":"White","Size":"M"}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				require.NotNil(t, resp.MatchedVariant)
				assert.False(t, resp.InStock)
				assert.False(t, resp.CanAddToCart)
			},
		},
		{
			name:               "Stock-required reachability hides sold-out values",
			settings:           variants.Settings{RequireStock: true},
			code:               "HEADPHONE",
			body:               `{"selection":{}}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				assert.Equal(t, []string{"Black"}, availableValues(resp, "Color"))
			},
		},
		{
			name:               "Clear removes a pick",
			code:               "HEADPHONE",
			body:               `{"selection":{"Color":"Black","Size":"S"},"clear":"Size"}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeResolved(t, rec)
				assert.Equal(t, map[string]string{"Color": "Black"}, resp.Selection)
			},
		},
		{
			name:               "Unknown option",
			code:               "HEADPHONE",
			body:               `{"change":{"option":"Material","value":"Wood"}}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Invalid JSON body",
			code:               "HEADPHONE",
			body:               `{`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Product not found",
			code:               "NOPE",
			body:               `{}`,
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSelection(t, tc.settings, tc.code, tc.body)
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
