package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transitlab/stopgraph/internal/app"
	"github.com/transitlab/stopgraph/internal/appconf"
	"github.com/transitlab/stopgraph/internal/layered"
	"github.com/transitlab/stopgraph/internal/models"
	"github.com/transitlab/stopgraph/internal/testutil"
)

// createTestApi builds the layered graphs of the simple fixture feed and
// wraps them in a RestAPI.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	layers, err := layered.BuildLayeredGraphs(context.Background(), testutil.GetFixturePath(t, "simple"), layered.Options{})
	require.NoError(t, err)

	api := NewRestAPI(&app.Application{
		Config: appconf.Config{
			Env: appconf.Test.String(),
		},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		BuildID: "test-build",
		Layers:  layers,
	})
	t.Cleanup(api.Close)

	return api
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var model models.ResponseModel
	if resp.StatusCode != http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(body, &model), "body: %s", body)
	}
	return resp, model
}

func responseData(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	return data
}

func responseList(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	list, ok := responseData(t, model)["list"].([]interface{})
	require.True(t, ok, "response list should be an array")
	return list
}
